package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nhle/ourspace/internal/auth"
	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/store"
	"github.com/nhle/ourspace/internal/streak"
)

var (
	loginPassword string
	streakOutput  string
)

// loginCmd checks a password, records the daily visit and remembers the
// session for later commands and the terminal UI.
var loginCmd = &cobra.Command{
	Use:   "login <name>",
	Short: "Log in as victor or mimi",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who is logged in",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

// streakCmd prints the days-together counter.
var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show how many days you have both visited",
	Args:  cobra.NoArgs,
	RunE:  runStreak,
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
	_ = loginCmd.MarkFlagRequired("password")

	streakCmd.Flags().StringVarP(&streakOutput, "output", "o", outputText, "Output format: text, json or yaml")
}

func runLogin(cmd *cobra.Command, args []string) error {
	user, err := auth.FromConfig(cfg).Login(args[0], loginPassword)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	tracker := streak.NewTracker(s, logger, streak.WithClock(now))
	if err := tracker.RecordLogin(cmd.Context(), user.Key()); err != nil {
		return err
	}

	sessions, err := openSessions()
	if err != nil {
		return err
	}
	if err := sessions.Save(user); err != nil {
		return err
	}

	counter := tracker.Counter(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s. Days together: %d\n", user, counter.Count)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	sessions, err := openSessions()
	if err != nil {
		return err
	}
	if err := sessions.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	user, err := currentUser()
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), user)
	return nil
}

// streakReport is the machine-readable form of the streak command.
type streakReport struct {
	Counter      model.StreakCounter `json:"counter" yaml:"counter"`
	User         string              `json:"user,omitempty" yaml:"user,omitempty"`
	LastLogin    string              `json:"last_login,omitempty" yaml:"last_login,omitempty"`
	PartnerToday *bool               `json:"partner_today,omitempty" yaml:"partner_today,omitempty"`
}

func runStreak(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	report := buildStreakReport(cmd.Context(), s)

	return render(cmd.OutOrStdout(), streakOutput, report, func(w io.Writer) error {
		fmt.Fprintf(w, "Days together: %d\n", report.Counter.Count)
		if report.Counter.Started() {
			fmt.Fprintf(w, "Since: %s\n", *report.Counter.StartDate)
		}
		if report.PartnerToday != nil {
			partner := "no"
			if *report.PartnerToday {
				partner = "yes"
			}
			fmt.Fprintf(w, "Partner visited today: %s\n", partner)
		}
		return nil
	})
}

// buildStreakReport adds the viewer's details when someone is logged in.
// A saved session counts as today's visit before the counter is read.
func buildStreakReport(ctx context.Context, s store.Store) streakReport {
	tracker := streak.NewTracker(s, logger, streak.WithClock(now))

	user, err := restoreUser(ctx, s)
	if err != nil {
		return streakReport{Counter: tracker.Counter(ctx)}
	}

	report := streakReport{Counter: tracker.Counter(ctx), User: user.String()}
	report.LastLogin, _ = tracker.LastLogin(ctx, user)
	partnerToday := tracker.PartnerLoggedInToday(ctx, user)
	report.PartnerToday = &partnerToday
	return report
}
