package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/moodkeeper/internal/client/models"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
)

// clearValue in an edit prompt empties an optional field.
const clearValue = "-"

func moodChoices() string {
	names := make([]string, len(common.MoodTypes))
	for i, m := range common.MoodTypes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// entryID parses the id argument of show/edit/delete/photo.
func entryID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("id", "must be a positive number")
	}
	return id, nil
}

// Add prompts for a new entry and saves it. The entry is kept locally when
// the server cannot be reached.
func (a *App) Add(ctx context.Context) error {
	m := &models.MoodEntry{}

	mood, err := getSimpleText(a.reader, "Mood ("+moodChoices()+")", a.out)
	if err != nil {
		return err
	}
	m.MoodType = common.MoodType(mood)

	if m.EntryDate, err = GetWithDefault(a.reader, "Date", a.now().Format(common.DateLayout), a.out); err != nil {
		return err
	}
	if m.EntryTime, err = GetWithDefault(a.reader, "Time (HH:MM:SS, empty for now)", "", a.out); err != nil {
		return err
	}

	note, err := GetMultiline(a.reader, "Note (optional)", a.out)
	if err != nil {
		return err
	}
	if note != "" {
		m.Note = &note
	}

	activities, err := getSimpleText(a.reader, "Activities (comma separated, optional)", a.out)
	if err != nil {
		return err
	}
	m.Activities = splitList(activities)

	saved, err := a.moods.CreateMood(ctx, m)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Saved entry %d %s", saved.ID, syncLabel(saved)))
	return nil
}

// List prints local entries, newest first. Optional arguments bound the
// entry date: list [from [to]].
func (a *App) List(ctx context.Context, args []string) error {
	var (
		list []*models.MoodEntry
		err  error
	)
	if len(args) == 0 {
		list, err = a.moods.ListMoods(ctx)
	} else {
		from, to := args[0], ""
		if len(args) > 1 {
			to = args[1]
		}
		list, err = a.moods.ListMoodsBetween(ctx, from, to)
	}
	if err != nil {
		return err
	}

	if len(list) == 0 {
		printlnFn("No entries")
		return nil
	}
	printlnFn(renderList(list))
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := entryID(args, "show <id>")
	if err != nil {
		return err
	}
	m, err := a.moods.GetMood(ctx, id)
	if err != nil {
		return err
	}
	printlnFn(renderEntry(m))
	return nil
}

// Edit walks through the fields of an entry with the current values as
// defaults. "-" clears the note or the activities.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := entryID(args, "edit <id>")
	if err != nil {
		return err
	}
	m, err := a.moods.GetMood(ctx, id)
	if err != nil {
		return err
	}

	mood, err := GetWithDefault(a.reader, "Mood ("+moodChoices()+")", string(m.MoodType), a.out)
	if err != nil {
		return err
	}
	m.MoodType = common.MoodType(mood)

	if m.EntryDate, err = GetWithDefault(a.reader, "Date", m.EntryDate, a.out); err != nil {
		return err
	}
	if m.EntryTime, err = GetWithDefault(a.reader, "Time", m.EntryTime, a.out); err != nil {
		return err
	}

	note, err := GetWithDefault(a.reader, "Note ('-' to clear)", deref(m.Note), a.out)
	if err != nil {
		return err
	}
	switch note {
	case clearValue, "":
		m.Note = nil
	default:
		m.Note = &note
	}

	activities, err := GetWithDefault(a.reader, "Activities ('-' to clear)", strings.Join(m.Activities, ", "), a.out)
	if err != nil {
		return err
	}
	if activities == clearValue {
		m.Activities = nil
	} else {
		m.Activities = splitList(activities)
	}

	saved, err := a.moods.UpdateMood(ctx, m)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Updated entry %d %s", saved.ID, syncLabel(saved)))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := entryID(args, "delete <id>")
	if err != nil {
		return err
	}
	if err := a.moods.DeleteMood(ctx, &models.MoodEntry{ID: id}); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Deleted entry %d", id))
	return nil
}

// Photo attaches an image file: photo <id> <path>.
func (a *App) Photo(ctx context.Context, args []string) error {
	id, err := entryID(args, "photo <id> <path>")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: photo <id> <path>")
	}

	m, err := a.moods.AttachPhoto(ctx, id, args[1])
	if err != nil {
		return err
	}
	if m.PhotoURL == nil {
		printlnFn("Photo saved locally, upload will be retried on sync")
		return nil
	}
	printlnFn(fmt.Sprintf("Photo uploaded for entry %d", m.ID))
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
