package observability

import (
	"flockr/services"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// SnapshotProvider is implemented by services.Platform.
type SnapshotProvider interface {
	Snapshot() (services.Snapshot, error)
}

// DumpState writes the users and channels of the platform as two tables.
func DumpState(w io.Writer, provider SnapshotProvider) error {
	snapshot, err := provider.Snapshot()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "USERS (%d)\n", len(snapshot.Users))
	users := newTable(w, []string{"ID", "Handle", "Email", "Name", "Permission"})
	for _, u := range snapshot.Users {
		users.Append([]string{strconv.Itoa(u.ID), u.Handle, u.Email, u.Name, u.Permission})
	}
	users.Render()

	fmt.Fprintf(w, "\nCHANNELS (%d)\n", len(snapshot.Channels))
	channels := newTable(w, []string{"ID", "Name", "Public", "Owners", "Members"})
	for _, c := range snapshot.Channels {
		channels.Append([]string{strconv.Itoa(c.ID), c.Name, strconv.FormatBool(c.Public), joinIDs(c.Owners), joinIDs(c.Members)})
	}
	channels.Render()
	return nil
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func joinIDs(ids []int) string {
	return strings.Join(lo.Map(ids, func(id int, _ int) string { return strconv.Itoa(id) }), ",")
}
