package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bitacora-go/internal/app"
	"bitacora-go/internal/config"
	"bitacora-go/internal/core"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Login", "AddEntry").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts for a passphrase without echoing it.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(data), nil
}

// parseEventDate accepts RFC3339, "2006-01-02 15:04" or a bare "2006-01-02"
// and returns the stored ISO form.
func parseEventDate(raw string) (string, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return core.ISOTime(t), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q (want RFC3339, '2006-01-02 15:04' or '2006-01-02')", raw)
}

var rootCmd = &cobra.Command{
	Use:   "bita",
	Short: "Personal agenda and multimedia field journal",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		deviceID := uuid.New().String()
		cfg := config.NewConfig(deviceID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Device ID: %s\n", deviceID)
		fmt.Printf("Base Dir:  %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Device ID: %s\n", cfg.DeviceID)
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Media Dir: %s\n", cfg.Media.Dir)
		fmt.Printf("Store:     %s\n", cfg.Store.Type)
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate export encryption keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetupKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		if a.KeysConfigured() {
			return fmt.Errorf("export keys already exist")
		}

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.SetupKeys(pass); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Println("Export keys generated. Exports will be encrypted from now on.")
		return nil
	},
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts and the session",
}

var userRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")

		password, err := readPassphrase("Password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm password: ")
		if err != nil {
			return err
		}
		if len(password) < 6 {
			return fmt.Errorf("password must be at least 6 characters")
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		a, err := newApp("Register")
		if err != nil {
			return err
		}
		defer a.Close()

		acct, err := a.Register(username, email, password)
		if err != nil {
			return err
		}

		fmt.Printf("Registered %s (%s)\n", acct.Username, acct.Email)
		return nil
	},
}

var userLoginCmd = &cobra.Command{
	Use:   "login EMAIL",
	Short: "Log in and start a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassphrase("Password: ")
		if err != nil {
			return err
		}

		a, err := newApp("Login")
		if err != nil {
			return err
		}
		defer a.Close()

		acct, err := a.Login(args[0], password)
		if err != nil {
			return err
		}

		fmt.Printf("Logged in as %s\n", acct.Username)
		return nil
	},
}

var userLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Logout")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var userWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Whoami")
		if err != nil {
			return err
		}
		defer a.Close()

		acct := a.CurrentSession()
		if acct == nil {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s (%s)\n", acct.Username, acct.Email)
		return nil
	},
}

// event command
var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Manage calendar events",
}

// eventFromFlags builds the full event field set from the command's flags.
func eventFromFlags(cmd *cobra.Command) (core.Event, error) {
	title, _ := cmd.Flags().GetString("title")
	category, _ := cmd.Flags().GetString("category")
	participants, _ := cmd.Flags().GetString("participants")
	rawDate, _ := cmd.Flags().GetString("date")

	if title == "" {
		return core.Event{}, fmt.Errorf("--title is required")
	}
	cat := core.Category(category)
	if !cat.Valid() {
		return core.Event{}, fmt.Errorf("invalid category %q (one of: personal, work, study, meeting, other)", category)
	}
	if rawDate == "" {
		return core.Event{}, fmt.Errorf("--date is required")
	}
	date, err := parseEventDate(rawDate)
	if err != nil {
		return core.Event{}, err
	}

	return core.Event{
		Title:        title,
		Category:     cat,
		Participants: participants,
		Date:         date,
	}, nil
}

func addEventFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Event title")
	cmd.Flags().String("category", "personal", "Category: personal, work, study, meeting, other")
	cmd.Flags().String("participants", "", "Participants (free text)")
	cmd.Flags().String("date", "", "Event date (RFC3339, '2006-01-02 15:04' or '2006-01-02')")
}

var eventAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an event",
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := eventFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp("AddEvent")
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.AddEvent(draft)
		if err != nil {
			return err
		}

		fmt.Printf("Added event %q (%d total)\n", draft.Title, len(events))
		return nil
	},
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your events",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListEvents")
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.ListEvents()
		if err != nil {
			return err
		}

		if len(events) == 0 {
			fmt.Println("No events.")
			return nil
		}

		for _, e := range events {
			line := fmt.Sprintf("%s  %s  %-8s  %s", e.ID, e.Date, e.Category, e.Title)
			if e.Participants != "" {
				line += "  [" + e.Participants + "]"
			}
			fmt.Println(line)
		}
		return nil
	},
}

var eventUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Replace an event's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := eventFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp("UpdateEvent")
		if err != nil {
			return err
		}
		defer a.Close()

		found, err := a.UpdateEvent(args[0], fields)
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("No event with id %s; nothing changed.\n", args[0])
			return nil
		}
		fmt.Println("Event updated.")
		return nil
	},
}

var eventDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteEvent")
		if err != nil {
			return err
		}
		defer a.Close()

		found, err := a.DeleteEvent(args[0])
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("No event with id %s; nothing changed.\n", args[0])
			return nil
		}
		fmt.Println("Event deleted.")
		return nil
	},
}

// entry command
var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage journal entries",
}

var entryAddCmd = &cobra.Command{
	Use:   "add FILE",
	Short: "Save a captured photo or video as a journal entry",
	Long: `Save a captured file as a journal entry.

The file is moved into the media store, so the original path stops existing.
Pass --lat and --lon together to attach the capture location.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		video, _ := cmd.Flags().GetBool("video")
		note, _ := cmd.Flags().GetString("note")

		typ := core.MediaPhoto
		if video {
			typ = core.MediaVideo
		}

		var loc *core.Location
		latSet := cmd.Flags().Changed("lat")
		lonSet := cmd.Flags().Changed("lon")
		if latSet != lonSet {
			return fmt.Errorf("--lat and --lon must be given together")
		}
		if latSet {
			lat, _ := cmd.Flags().GetFloat64("lat")
			lon, _ := cmd.Flags().GetFloat64("lon")
			loc = &core.Location{Latitude: lat, Longitude: lon}
		}

		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		a, err := newApp("AddEntry")
		if err != nil {
			return err
		}
		defer a.Close()

		entry, err := a.AddEntry(absPath, typ, note, loc)
		if err != nil {
			return err
		}

		fmt.Printf("Saved entry %s -> %s\n", entry.ID, entry.URI)
		return nil
	},
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		photos, _ := cmd.Flags().GetBool("photos")
		videos, _ := cmd.Flags().GetBool("videos")
		query, _ := cmd.Flags().GetString("search")

		if photos && videos {
			return fmt.Errorf("--photos and --videos are mutually exclusive")
		}
		if (photos || videos) && query != "" {
			return fmt.Errorf("a type filter cannot be combined with --search")
		}

		filter := core.Filter{Query: query}
		switch {
		case photos:
			filter.Kind = core.FilterPhotos
		case videos:
			filter.Kind = core.FilterVideos
		}

		a, err := newApp("ListEntries")
		if err != nil {
			return err
		}
		defer a.Close()

		entries := a.ListEntries(filter)
		if len(entries) == 0 {
			fmt.Println("No entries.")
			return nil
		}

		for _, e := range entries {
			loc := ""
			if e.Location != nil {
				loc = fmt.Sprintf("  @%.4f,%.4f", e.Location.Latitude, e.Location.Longitude)
			}
			note := e.Note
			if note == "" {
				note = "-"
			}
			fmt.Printf("%s  %-5s  %s%s\n", e.ID, e.Type, strings.TrimSpace(note), loc)
		}
		return nil
	},
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an entry and its media file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteEntry")
		if err != nil {
			return err
		}
		defer a.Close()

		found, err := a.DeleteEntry(args[0])
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("No entry with id %s; nothing changed.\n", args[0])
			return nil
		}
		fmt.Println("Entry deleted.")
		return nil
	},
}

// export / restore commands
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Push the journal to the configured vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Export()
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Exported %d entries\n", count)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Pull the newest export back from the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Restore")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase := ""
		if a.KeysConfigured() {
			passphrase, err = readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
		}

		count, err := a.Restore(passphrase)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		fmt.Printf("Restored %d entries\n", count)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)

	// user subcommands
	userCmd.AddCommand(userRegisterCmd)
	userRegisterCmd.Flags().String("username", "", "Username")
	userRegisterCmd.Flags().String("email", "", "Email address")
	userRegisterCmd.MarkFlagRequired("username")
	userRegisterCmd.MarkFlagRequired("email")
	userCmd.AddCommand(userLoginCmd)
	userCmd.AddCommand(userLogoutCmd)
	userCmd.AddCommand(userWhoamiCmd)

	// event subcommands
	eventCmd.AddCommand(eventAddCmd)
	addEventFlags(eventAddCmd)
	eventCmd.AddCommand(eventListCmd)
	eventCmd.AddCommand(eventUpdateCmd)
	addEventFlags(eventUpdateCmd)
	eventCmd.AddCommand(eventDeleteCmd)

	// entry subcommands
	entryCmd.AddCommand(entryAddCmd)
	entryAddCmd.Flags().Bool("video", false, "Treat the file as a video capture")
	entryAddCmd.Flags().String("note", "", "Annotation for the entry")
	entryAddCmd.Flags().Float64("lat", 0, "Capture latitude")
	entryAddCmd.Flags().Float64("lon", 0, "Capture longitude")
	entryCmd.AddCommand(entryListCmd)
	entryListCmd.Flags().Bool("photos", false, "Only photo entries")
	entryListCmd.Flags().Bool("videos", false, "Only video entries")
	entryListCmd.Flags().StringP("search", "s", "", "Case-insensitive note search")
	entryCmd.AddCommand(entryDeleteCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(restoreCmd)
}
