package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/notify"
	"github.com/nhle/ourspace/internal/store"
	appsync "github.com/nhle/ourspace/internal/sync"
	"github.com/nhle/ourspace/internal/theme"
)

var (
	feedOutput string
	feedWatch  bool
)

// notifyCmd raises an activity for the partner, the same way the app's
// screens do when something is created or updated.
var notifyCmd = &cobra.Command{
	Use:   "notify <category> <action> [details...]",
	Short: "Tell your partner about something you did",
	Long: `Sends a notification to your partner.

Categories with a dedicated message: journal, mood, checkin, goals,
voice, letters, affirmations, emergency, admin. Any other category is
accepted and reads "<you> used <category>". Details, when given,
replace the default message.

Example:
  ourspace notify letters sent
  ourspace notify mood updated "Mood: 😊 (Happy)"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runNotify,
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "List your notifications, newest first",
	Args:  cobra.NoArgs,
	RunE:  runFeed,
}

var feedReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeedRead,
}

var feedReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark all your notifications as read",
	Args:  cobra.NoArgs,
	RunE:  runFeedReadAll,
}

var feedDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeedDelete,
}

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage your preferences",
}

var prefsNotificationsCmd = &cobra.Command{
	Use:       "notifications <on|off|toggle>",
	Short:     "Turn new notifications on or off",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off", "toggle"},
	RunE:      runPrefsNotifications,
}

// prefsThemeCmd saves the palette to the config file. A running terminal
// UI watches the file and switches palette right away.
var prefsThemeCmd = &cobra.Command{
	Use:   "theme <name>",
	Short: "Choose the color palette",
	Args:  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:  runPrefsTheme,
}

func init() {
	prefsThemeCmd.ValidArgs = theme.Palettes()

	feedCmd.PersistentFlags().StringVarP(&feedOutput, "output", "o", outputText, "Output format: text, json or yaml")
	feedCmd.Flags().BoolVarP(&feedWatch, "watch", "w", false, "Keep polling and print changes")

	feedCmd.AddCommand(feedReadCmd)
	feedCmd.AddCommand(feedReadAllCmd)
	feedCmd.AddCommand(feedDeleteCmd)

	prefsCmd.AddCommand(prefsNotificationsCmd)
	prefsCmd.AddCommand(prefsThemeCmd)
}

// withFeed opens the store and the feed of the participant whose session
// is saved.
func withFeed(ctx context.Context, fn func(s store.Store, feed *notify.Feed) error) error {
	s, err := openStore()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	user, err := restoreUser(ctx, s)
	if err != nil {
		return err
	}

	feed, err := notify.NewFeed(s, user, logger)
	if err != nil {
		return err
	}
	return fn(s, feed)
}

func runNotify(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	user, err := restoreUser(cmd.Context(), s)
	if err != nil {
		return err
	}

	category, action := strings.ToLower(args[0]), args[1]
	details := strings.Join(args[2:], " ")

	d := notify.NewDispatcher(s, logger, notify.WithDispatchClock(now))
	if err := d.Dispatch(cmd.Context(), category, user.Key(), action, details); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Sent to %s\n", model.Category(category).Icon(), user.Partner())
	return nil
}

func runFeed(cmd *cobra.Command, args []string) error {
	return withFeed(cmd.Context(), func(s store.Store, feed *notify.Feed) error {
		view := feed.Poll(cmd.Context())
		if err := printFeed(cmd.OutOrStdout(), view, feed.UnreadCount()); err != nil {
			return err
		}
		if !feedWatch {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchFeed(ctx, cmd.OutOrStdout(), s, feed)
	})
}

// watchFeed prints each poll until ctx is done. Events that would pop up
// in the terminal UI are announced on their own line first.
func watchFeed(ctx context.Context, w io.Writer, s store.Store, feed *notify.Feed) error {
	prefs := notify.NewPreferences(s, logger)
	toaster := notify.NewToaster(cfg.Notifications.ToastWindow(), cfg.Notifications.ToastTTL(), now)
	poller := appsync.New(feed, prefs, toaster, logger, cfg.Notifications.PollInterval())
	poller.Start()
	defer poller.Stop()

	lastUnread := feed.UnreadCount()
	for {
		select {
		case <-ctx.Done():
			return nil
		case res := <-poller.Results():
			for _, n := range res.Toasts {
				fmt.Fprintf(w, "🔔 %s %s\n", n.Icon, n.Message)
			}
			if len(res.Toasts) == 0 && res.Unread == lastUnread {
				continue
			}
			lastUnread = res.Unread
			if err := printFeed(w, res.Notifications, res.Unread); err != nil {
				return err
			}
		}
	}
}

func printFeed(w io.Writer, view []model.Notification, unread int) error {
	return render(w, feedOutput, view, func(w io.Writer) error {
		if len(view) == 0 {
			fmt.Fprintln(w, "No notifications")
			return nil
		}
		fmt.Fprintf(w, "%d notification(s), %d unread\n", len(view), unread)
		for _, n := range view {
			marker := " "
			if !n.Read {
				marker = "●"
			}
			fmt.Fprintf(w, "%s %s %-40s %-9s %s\n",
				marker, n.Icon, n.Message, notify.FormatAge(now(), n.Timestamp), n.ID)
		}
		return nil
	})
}

func runFeedRead(cmd *cobra.Command, args []string) error {
	return withFeed(cmd.Context(), func(_ store.Store, feed *notify.Feed) error {
		view := feed.MarkRead(cmd.Context(), args[0])
		return printFeed(cmd.OutOrStdout(), view, feed.UnreadCount())
	})
}

func runFeedReadAll(cmd *cobra.Command, args []string) error {
	return withFeed(cmd.Context(), func(_ store.Store, feed *notify.Feed) error {
		view := feed.MarkAllRead(cmd.Context())
		return printFeed(cmd.OutOrStdout(), view, feed.UnreadCount())
	})
}

func runFeedDelete(cmd *cobra.Command, args []string) error {
	return withFeed(cmd.Context(), func(_ store.Store, feed *notify.Feed) error {
		view := feed.Delete(cmd.Context(), args[0])
		return printFeed(cmd.OutOrStdout(), view, feed.UnreadCount())
	})
}

func runPrefsNotifications(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	user, err := restoreUser(cmd.Context(), s)
	if err != nil {
		return err
	}

	prefs := notify.NewPreferences(s, logger)
	var enabled bool
	switch args[0] {
	case "on":
		enabled, err = true, prefs.SetEnabled(cmd.Context(), user, true)
	case "off":
		enabled, err = false, prefs.SetEnabled(cmd.Context(), user, false)
	default:
		enabled, err = prefs.Toggle(cmd.Context(), user)
	}
	if err != nil {
		return err
	}

	state := "off"
	if enabled {
		state = "on"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Notifications %s for %s\n", state, user)
	return nil
}

func runPrefsTheme(cmd *cobra.Command, args []string) error {
	cfg.Display.Theme = args[0]
	if err := model.SaveConfig(configPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", args[0])
	return nil
}
