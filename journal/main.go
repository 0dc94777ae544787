// Command journal is a terminal front end for the calendar API. It keeps a
// client.Session in memory and syncs every edit in the background.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"sofia-api/calendar"
	"sofia-api/client"
)

var cli struct {
	API   string `help:"Base URL of the calendar API." env:"SOFIA_API_URL" default:"http://localhost:8080"`
	Token string `help:"Bearer token sent with API calls." env:"SOFIA_API_TOKEN"`
	Month string `help:"Month to open (YYYY-MM). Defaults to the current month."`
	Debug bool   `help:"Log sync failures."`
}

func main() {
	_ = godotenv.Load()
	kong.Parse(&cli,
		kong.Name("journal"),
		kong.Description("Month-grid journal for notes and moods."),
		kong.UsageOnError(),
	)

	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(log.WarnLevel)
	if cli.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	session := client.NewSession(client.NewHTTPGateway(cli.API, cli.Token), client.WithLogger(logger))
	defer session.Close()

	if cli.Month != "" {
		month, err := calendar.ParseMonthKey(cli.Month)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		session.SetMonth(month)
	}

	r := &repl{session: session, out: os.Stdout}
	r.load(context.Background())
	if err := r.run(context.Background(), os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type repl struct {
	session *client.Session
	out     io.Writer
}

// run reads commands until EOF or quit.
func (r *repl) run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(r.out, prompt)
	for sc.Scan() {
		quit, err := r.exec(ctx, sc.Text())
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render("error: "+err.Error()))
		}
		if quit {
			return nil
		}
		fmt.Fprint(r.out, prompt)
	}
	return sc.Err()
}

// load fetches the active month. A failed fetch still leaves a generated grid
// in place, so the error is only reported.
func (r *repl) load(ctx context.Context) {
	if err := r.session.LoadMonth(ctx); err != nil {
		fmt.Fprintln(r.out, warnStyle.Render("offline: "+err.Error()))
	}
	fmt.Fprintln(r.out, renderMonth(r.session.Month(), r.session.Days()))
}
