package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"kidsync/store"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	unmappedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// newStatusCmd creates the status command
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show local sync state for the signed-in owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ownerID, err := app.requireOwner()
			if err != nil {
				return err
			}

			stats, err := app.store.OwnerStats(ownerID)
			if err != nil {
				return err
			}

			fmt.Println(titleStyle.Render("kidsync status"))
			fmt.Println(statusLine("Owner", ownerID))
			fmt.Println(statusLine("Children", fmt.Sprintf("%d (%d mapped remotely)", stats.Children, stats.MappedChildren)))
			fmt.Println(statusLine("Unsynced progress", pendingCount(stats.UnsyncedProgress)))
			fmt.Println(statusLine("Unsynced events", pendingCount(stats.UnsyncedEvents)))
			fmt.Println(statusLine("Pending deletions", pendingCount(stats.PendingTombstones)))
			return nil
		},
	}
}

func statusLine(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func pendingCount(n int) string {
	if n > 0 {
		return pendingStyle.Render(fmt.Sprintf("%d", n))
	}
	return "0"
}

// printChildren renders the child list with remote-mapping markers
func printChildren(children []store.Child, bindings map[string]string) {
	if len(children) == 0 {
		fmt.Println("No children on this device.")
		return
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Children (%d)", len(children))))
	for _, child := range children {
		marker := unmappedStyle.Render("local only")
		if remoteID, ok := bindings[child.LocalID]; ok {
			marker = valueStyle.Render("remote " + remoteID)
		}

		line := strings.Join([]string{
			valueStyle.Render(child.Name),
			unmappedStyle.Render(child.LocalID),
			marker,
		}, "  ")
		fmt.Println("  " + line)
	}
}
