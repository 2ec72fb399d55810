package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/frostdev-ops/kbd-backlight-go/internal/ipc"
	"github.com/frostdev-ops/kbd-backlight-go/pkg/version"
	"github.com/spf13/cobra"
)

var socketPath = ipc.DefaultSocketPath

func main() {
	rootCmd := &cobra.Command{
		Use:   "kbd-backlight",
		Short: "Control the keyboard backlight daemon",
	}

	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", socketPath, "Daemon control socket path")

	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(setCmd())
	rootCmd.AddCommand(autoCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(daemonCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func client() *ipc.Client {
	return ipc.NewClient(socketPath)
}

// send performs one exchange and converts Error responses into errors
func send(req ipc.Request) (ipc.Response, error) {
	resp, err := client().Send(req)
	if err != nil {
		return nil, err
	}
	if e, ok := resp.(ipc.Error); ok {
		return nil, fmt.Errorf("%s", e.Message)
	}
	return resp, nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the daemon's current state",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := send(ipc.GetStatus{})
			if err != nil {
				return err
			}
			status, ok := resp.(ipc.Status)
			if !ok {
				return fmt.Errorf("unexpected response %T", resp)
			}

			fmt.Printf("Active profile:  %s\n", status.ActiveProfile)
			fmt.Printf("Brightness:      %d\n", status.Brightness)
			fmt.Printf("Idle:            %v\n", status.IsIdle)
			fmt.Printf("Fullscreen:      %v\n", status.IsFullscreen)
			if status.ManualOverride != nil {
				fmt.Printf("Manual override: %d\n", *status.ManualOverride)
			} else {
				fmt.Printf("Manual override: none\n")
			}
			return nil
		},
	}
}

func profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <name>",
		Short: "Switch the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := send(ipc.SetProfile{Name: args[0]})
			if err != nil {
				return err
			}
			if changed, ok := resp.(ipc.ProfileChanged); ok {
				fmt.Printf("Switched to profile '%s'\n", changed.Name)
			}
			return nil
		},
	}
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <brightness>",
		Short: "Set a manual brightness override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[0])
			if err != nil || value < 0 {
				return fmt.Errorf("brightness must be a non-negative integer, got %q", args[0])
			}
			resp, err := send(ipc.SetManualBrightness{Brightness: value})
			if err != nil {
				return err
			}
			if set, ok := resp.(ipc.BrightnessSet); ok {
				fmt.Printf("Brightness set to %d (automatic rules suspended)\n", set.Brightness)
			}
			return nil
		},
	}
}

func autoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Clear the manual override and resume automatic rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := send(ipc.ClearManualOverride{}); err != nil {
				return err
			}
			fmt.Println("Automatic rules resumed")
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := send(ipc.ListProfiles{})
			if err != nil {
				return err
			}
			list, ok := resp.(ipc.ProfileList)
			if !ok {
				return fmt.Errorf("unexpected response %T", resp)
			}
			for _, name := range list.Profiles {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage time schedules",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <profile> <HH:MM> <brightness>",
		Short: "Append a time schedule to a profile",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			hour, minute, err := parseTimeOfDay(args[1])
			if err != nil {
				return err
			}
			brightness, err := strconv.Atoi(args[2])
			if err != nil || brightness < 0 {
				return fmt.Errorf("brightness must be a non-negative integer, got %q", args[2])
			}

			_, err = send(ipc.AddTimeSchedule{
				Profile:    args[0],
				Hour:       hour,
				Minute:     minute,
				Brightness: brightness,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added schedule %02d:%02d -> %d to profile '%s'\n", hour, minute, brightness, args[0])
			return nil
		},
	})
	return cmd
}

func daemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the daemon process",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Ask the daemon to shut down",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().SendNoReply(ipc.Shutdown{}); err != nil {
				return err
			}
			fmt.Println("Shutdown requested")
			return nil
		},
	})
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.GetFullVersion())
		},
	}
}

// parseTimeOfDay parses "HH:MM" and validates the 24-hour range
func parseTimeOfDay(s string) (uint8, uint8, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("time must be HH:MM, got %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("hour must be 0-23, got %q", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("minute must be 0-59, got %q", parts[1])
	}
	return uint8(hour), uint8(minute), nil
}
