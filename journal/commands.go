package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"

	"sofia-api/calendar"
	"sofia-api/client"
	"sofia-api/domain"
)

const prompt = "journal> "

var errNothingMoved = errors.New("nothing moved")

// env is bound into every command's Run.
type env struct {
	ctx  context.Context
	repl *repl
	quit bool
}

// iso accepts a full YYYY-MM-DD date or a day of the active month.
func (e *env) iso(arg string) (string, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		month := e.repl.session.Month()
		return calendar.ISODate(month.AddDate(0, 0, n-1)), nil
	}
	if _, err := calendar.ParseISODate(arg); err != nil {
		return "", err
	}
	return arg, nil
}

func (e *env) print(s string) { fmt.Fprintln(e.repl.out, s) }

type lineGrammar struct {
	Load  loadCmd  `cmd:"" help:"Load a month (YYYY-MM) or reload the current one."`
	Prev  prevCmd  `cmd:"" help:"Go to the previous month."`
	Next  nextCmd  `cmd:"" help:"Go to the next month."`
	Show  showCmd  `cmd:"" help:"Print the month grid."`
	Day   dayCmd   `cmd:"" help:"Open a day and list its notes and moods."`
	Note  noteCmd  `cmd:"" help:"Open a note in the drawer."`
	Add   addCmd   `cmd:"" help:"Add a note to a day."`
	Edit  editCmd  `cmd:"" help:"Edit the title, body or task status of a note."`
	Rm    rmCmd    `cmd:"" help:"Delete a note."`
	Mood  moodCmd  `cmd:"" help:"Toggle a mood on a day."`
	Clear clearCmd `cmd:"" help:"Clear the moods of a day."`
	Move  moveCmd  `cmd:"" help:"Move a note to another day of this month."`
	Close closeCmd `cmd:"" help:"Close the note drawer, or the day if no note is open."`
	Quit  quitCmd  `cmd:"" aliases:"exit" help:"Leave the journal."`
}

// exec parses and runs one input line. It reports whether the user asked to
// quit.
func (r *repl) exec(ctx context.Context, line string) (bool, error) {
	args, err := splitArgs(line)
	if err != nil {
		return false, err
	}
	if len(args) == 0 {
		return false, nil
	}
	if args[0] == "help" {
		args = append([]string{"--help"}, args[1:]...)
	}

	var grammar lineGrammar
	exited := false
	parser, err := kong.New(&grammar,
		kong.Name("journal"),
		kong.Writers(r.out, r.out),
		kong.Exit(func(int) { exited = true }),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, NoExpandSubcommands: true}),
	)
	if err != nil {
		return false, err
	}
	kctx, err := parser.Parse(args)
	if exited {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	e := &env{ctx: ctx, repl: r}
	if err := kctx.Run(e); err != nil {
		return false, err
	}
	return e.quit, nil
}

type loadCmd struct {
	Month string `arg:"" optional:"" help:"Month key (YYYY-MM)."`
}

func (c *loadCmd) Run(e *env) error {
	if c.Month != "" {
		month, err := calendar.ParseMonthKey(c.Month)
		if err != nil {
			return err
		}
		e.repl.session.SetMonth(month)
	}
	e.repl.load(e.ctx)
	return nil
}

type prevCmd struct{}

func (prevCmd) Run(e *env) error {
	e.repl.session.PrevMonth()
	e.repl.load(e.ctx)
	return nil
}

type nextCmd struct{}

func (nextCmd) Run(e *env) error {
	e.repl.session.NextMonth()
	e.repl.load(e.ctx)
	return nil
}

type showCmd struct{}

func (showCmd) Run(e *env) error {
	e.print(renderMonth(e.repl.session.Month(), e.repl.session.Days()))
	return nil
}

type dayCmd struct {
	Day string `arg:"" help:"ISO date or day of month."`
}

func (c *dayCmd) Run(e *env) error {
	iso, err := e.iso(c.Day)
	if err != nil {
		return err
	}
	e.repl.session.OpenDayModal(iso)
	day, ok := e.repl.session.SelectedDay()
	if !ok {
		e.repl.session.CloseDayModal()
		return fmt.Errorf("%w: %s", client.ErrDayNotFound, iso)
	}
	e.print(renderDay(day))
	return nil
}

type noteCmd struct {
	Day string `arg:"" help:"ISO date or day of month."`
	ID  string `arg:"" help:"Note id."`
}

func (c *noteCmd) Run(e *env) error {
	iso, err := e.iso(c.Day)
	if err != nil {
		return err
	}
	e.repl.session.OpenNoteDrawer(iso, c.ID)
	note, ok := e.repl.session.SelectedNote()
	if !ok {
		e.repl.session.CloseNoteDrawer()
		return fmt.Errorf("%w: %s on %s", client.ErrNoteNotFound, c.ID, iso)
	}
	e.print(renderNote(note))
	return nil
}

type addCmd struct {
	Day    string `arg:"" help:"ISO date or day of month."`
	Title  string `arg:"" help:"Note title."`
	Type   string `short:"t" default:"text" help:"text, task or event."`
	Body   string `short:"b" help:"Note body; its first two words become tags."`
	Status string `short:"s" help:"Task status: pending, completed or reminder."`
}

func (c *addCmd) Run(e *env) error {
	iso, err := e.iso(c.Day)
	if err != nil {
		return err
	}
	note, err := e.repl.session.ComposeNote(iso, domain.Draft{
		Title:  c.Title,
		Type:   domain.NoteType(c.Type),
		Body:   c.Body,
		Status: domain.TaskStatus(c.Status),
	})
	if err != nil {
		return err
	}
	e.print(fmt.Sprintf("added %s to %s", idStyle.Render(note.ID), iso))
	return nil
}

type editCmd struct {
	Day       string `arg:"" help:"ISO date or day of month."`
	ID        string `arg:"" help:"Note id."`
	Title     string `help:"New title."`
	Body      string `help:"New body."`
	ClearBody bool   `help:"Remove the body."`
	Status    string `short:"s" help:"New task status."`
}

func (c *editCmd) Run(e *env) error {
	iso, err := e.iso(c.Day)
	if err != nil {
		return err
	}
	day, ok := e.repl.session.Day(iso)
	if !ok {
		return fmt.Errorf("%w: %s", client.ErrDayNotFound, iso)
	}
	current, _, ok := domain.FindNote(day.Notes, c.ID)
	if !ok {
		return fmt.Errorf("%w: %s on %s", client.ErrNoteNotFound, c.ID, iso)
	}
	edit := domain.Edit{Title: current.Title, Body: current.Body, Status: domain.TaskStatus(c.Status)}
	if c.Title != "" {
		edit.Title = c.Title
	}
	if c.Body != "" {
		edit.Body = c.Body
	}
	if c.ClearBody {
		edit.Body = ""
	}
	note, err := e.repl.session.EditNote(iso, c.ID, edit)
	if err != nil {
		return err
	}
	e.print(renderNote(note))
	return nil
}

type rmCmd struct {
	Day string `arg:"" help:"ISO date or day of month."`
	ID  string `arg:"" help:"Note id."`
}

func (c *rmCmd) Run(e *env) error {
	iso, err := e.iso(c.Day)
	if err != nil {
		return err
	}
	if !e.repl.session.DeleteNote(iso, c.ID) {
		return client.ErrMonthNotLoaded
	}
	e.print("deleted " + c.ID)
	return nil
}

type moodCmd struct {
	Day  string `arg:"" help:"ISO date or day of month."`
	Mood string `arg:"" help:"happy, productive, sad, confused or mad."`
}

func (c *moodCmd) Run(e *env) error {
	iso, err := e.iso(c.Day)
	if err != nil {
		return err
	}
	if err := e.repl.session.ToggleMood(iso, domain.MoodID(c.Mood)); err != nil {
		return err
	}
	day, _ := e.repl.session.Day(iso)
	e.print(iso + " " + renderMoods(day.Moods))
	return nil
}

type clearCmd struct {
	Day string `arg:"" help:"ISO date or day of month."`
}

func (c *clearCmd) Run(e *env) error {
	iso, err := e.iso(c.Day)
	if err != nil {
		return err
	}
	if !e.repl.session.ClearMoods(iso) {
		return client.ErrMonthNotLoaded
	}
	return nil
}

type moveCmd struct {
	ID   string `arg:"" help:"Note id."`
	From string `arg:"" help:"Day holding the note."`
	To   string `arg:"" help:"Target day."`
}

func (c *moveCmd) Run(e *env) error {
	from, err := e.iso(c.From)
	if err != nil {
		return err
	}
	to, err := e.iso(c.To)
	if err != nil {
		return err
	}
	if !e.repl.session.MoveNote(c.ID, from, to) {
		return errNothingMoved
	}
	e.print(fmt.Sprintf("moved %s to %s (not synced)", c.ID, to))
	return nil
}

type closeCmd struct{}

func (closeCmd) Run(e *env) error {
	if e.repl.session.NoteDrawerOpen() {
		e.repl.session.CloseNoteDrawer()
		return nil
	}
	e.repl.session.CloseDayModal()
	return nil
}

type quitCmd struct{}

func (quitCmd) Run(e *env) error {
	e.quit = true
	return nil
}
