package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/client/models"
)

// maxNotePreview bounds the note column of the list table, in runes.
const maxNotePreview = 40

func syncLabel(m *models.MoodEntry) string {
	if m.IsSynced {
		return "(synced)"
	}
	return "(saved locally, will sync later)"
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= maxNotePreview {
		return s
	}
	return string(r[:maxNotePreview-3]) + "..."
}

func renderList(list []*models.MoodEntry) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTIME\tMOOD\tSYNC\tNOTE")
	for _, m := range list {
		state := "yes"
		if !m.IsSynced {
			state = "pending"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.EntryDate, m.EntryTime, m.MoodType, state, preview(deref(m.Note)))
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func renderEntry(m *models.MoodEntry) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 1, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", m.ID)
	if m.ServerID != nil {
		fmt.Fprintf(w, "Server ID:\t%d\n", *m.ServerID)
	}
	fmt.Fprintf(w, "Mood:\t%s\n", m.MoodType)
	fmt.Fprintf(w, "When:\t%s %s\n", m.EntryDate, m.EntryTime)
	if m.Note != nil {
		fmt.Fprintf(w, "Note:\t%s\n", *m.Note)
	}
	if len(m.Activities) > 0 {
		fmt.Fprintf(w, "Activities:\t%s\n", strings.Join(m.Activities, ", "))
	}
	if m.PhotoPath != nil {
		fmt.Fprintf(w, "Photo:\t%s\n", *m.PhotoPath)
	}
	if m.PhotoURL != nil {
		fmt.Fprintf(w, "Photo key:\t%s\n", *m.PhotoURL)
	}
	fmt.Fprintf(w, "Synced:\t%t\n", m.IsSynced)
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func renderStats(s *api.MoodStats) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Period:\t%s\n", s.Period)
	fmt.Fprintf(w, "Entries:\t%d\n", s.TotalEntries)
	if len(s.Distribution) > 0 {
		fmt.Fprintln(w, "\nMOOD\tCOUNT")
		for _, d := range s.Distribution {
			fmt.Fprintf(w, "%s\t%d\n", d.MoodType, d.Count)
		}
	}
	if len(s.TopActivities) > 0 {
		fmt.Fprintln(w, "\nACTIVITY\tTIMES")
		for _, a := range s.TopActivities {
			fmt.Fprintf(w, "%s %s\t%d\n", a.Icon, a.Name, a.Frequency)
		}
	}
	if len(s.Trend) > 0 {
		fmt.Fprintln(w, "\nDATE\tMOOD\tCOUNT")
		for _, t := range s.Trend {
			fmt.Fprintf(w, "%s\t%s\t%d\n", t.EntryDate, t.MoodType, t.Count)
		}
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
