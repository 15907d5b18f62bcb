package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taoyao-code/timebox/internal/device"
	"github.com/taoyao-code/timebox/internal/imaging"
	"github.com/taoyao-code/timebox/internal/protocol/timebox"
)

func newViewCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "view TYPE",
		Short: "Change view (" + strings.Join(timebox.ViewNames(), "|") + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := timebox.ParseView(args[0])
			if err != nil {
				return err
			}
			return e.withClient(cmd, func(ctx context.Context, c *device.Client) error {
				return c.SwitchView(ctx, v)
			})
		},
	}
}

func parseOptionalColor(s string) (*timebox.RGB, error) {
	if s == "" {
		return nil, nil
	}
	rgb, err := imaging.ParseRGB(s)
	if err != nil {
		return nil, err
	}
	return &rgb, nil
}

func newClockCommand(e *env) *cobra.Command {
	var color string
	var ampm bool
	cmd := &cobra.Command{
		Use:   "clock",
		Short: "Display time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rgb, err := parseOptionalColor(color)
			if err != nil {
				return err
			}
			return e.withClient(cmd, func(ctx context.Context, c *device.Client) error {
				return c.ShowClock(ctx, rgb, !ampm)
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Color as #rgb, #rrggbb or a color name")
	cmd.Flags().BoolVar(&ampm, "ampm", false, "12h format am/pm")
	return cmd
}

func newTempCommand(e *env) *cobra.Command {
	var color string
	var fahrenheit bool
	cmd := &cobra.Command{
		Use:   "temp",
		Short: "Display temperature, set color",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rgb, err := parseOptionalColor(color)
			if err != nil {
				return err
			}
			return e.withClient(cmd, func(ctx context.Context, c *device.Client) error {
				return c.ShowTemperature(ctx, rgb, fahrenheit)
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Color as #rgb, #rrggbb or a color name")
	cmd.Flags().BoolVarP(&fahrenheit, "fahrenheit", "f", false, "Fahrenheit (only with --color)")
	return cmd
}

func newVolumeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "volume LEVEL",
		Short: fmt.Sprintf("Set volume (0-%d)", timebox.VolumeMax),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("level: %w", err)
			}
			if err := timebox.ValidateVolume(level); err != nil {
				return err
			}
			return e.withClient(cmd, func(ctx context.Context, c *device.Client) error {
				return c.SetVolume(ctx, level)
			})
		},
	}
}

func newSetTimeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "settime DATE",
		Short: `Set device clock ("now" or a date)`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := device.ParseDate(args[0], e.now)
			if err != nil {
				return err
			}
			return e.withClient(cmd, func(ctx context.Context, c *device.Client) error {
				return c.SetClock(ctx, t)
			})
		},
	}
}

func newRadioCommand(e *env) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "fmradio",
		Short: "Control fm radio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withClient(cmd, func(ctx context.Context, c *device.Client) error {
				return c.FMRadio(ctx, !off)
			})
		},
	}
	cmd.Flags().Bool("on", true, "Turn the radio on")
	cmd.Flags().BoolVar(&off, "off", false, "Turn the radio off")
	cmd.MarkFlagsMutuallyExclusive("on", "off")
	return cmd
}

func newRawCommand(e *env) *cobra.Command {
	var mask, frame bool
	cmd := &cobra.Command{
		Use:   "raw HEXBYTES",
		Short: "Send a raw message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := device.ParseHex(args[0])
			if err != nil {
				return err
			}
			return e.withClient(cmd, func(ctx context.Context, c *device.Client) error {
				return c.SendRaw(ctx, data, mask, frame)
			})
		},
	}
	cmd.Flags().BoolVar(&mask, "mask", false, "Escape reserved bytes before sending")
	cmd.Flags().BoolVar(&frame, "frame", false, "Treat bytes as a header and wrap them in a full frame")
	return cmd
}

func (e *env) filter(name string) (imaging.Filter, error) {
	if name == "" {
		name = e.cfg.Render.Scaling
	}
	return imaging.ParseFilter(name)
}

func newImageCommand(e *env) *cobra.Command {
	var scaling string
	cmd := &cobra.Command{
		Use:   "image FILE",
		Short: "Display an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.filter(scaling)
			if err != nil {
				return err
			}
			frame, err := imaging.LoadImage(args[0], f)
			if err != nil {
				return err
			}
			return e.withClient(cmd, func(ctx context.Context, c *device.Client) error {
				return c.ShowImage(ctx, frame)
			})
		},
	}
	cmd.Flags().StringVar(&scaling, "scaling", "", "Scaling filter: "+strings.Join(imaging.FilterNames(), "|"))
	return cmd
}

func newAnimationCommand(e *env) *cobra.Command {
	var (
		scaling string
		isGIF   bool
		delay   int
	)
	cmd := &cobra.Command{
		Use:   "animation PATH",
		Short: "Display an animation from a folder of images or a GIF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.filter(scaling)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("delay") {
				delay = e.cfg.Render.Delay
			}
			if delay < 0 || delay > 255 {
				return fmt.Errorf("delay must be 0-255, got %d", delay)
			}

			var frames []timebox.PixelFrame
			if isGIF {
				frames, _, err = imaging.LoadGIFFile(args[0], f)
			} else {
				frames, err = imaging.LoadFolder(args[0], f)
			}
			if err != nil {
				return err
			}
			return e.withClient(cmd, func(ctx context.Context, c *device.Client) error {
				return c.PlayAnimation(ctx, frames, byte(delay))
			})
		},
	}
	cmd.Flags().StringVar(&scaling, "scaling", "", "Scaling filter: "+strings.Join(imaging.FilterNames(), "|"))
	cmd.Flags().BoolVar(&isGIF, "gif", false, "PATH is a GIF file")
	cmd.Flags().Bool("folder", true, "PATH is a folder, one image per frame")
	cmd.Flags().IntVar(&delay, "delay", 0, "Frame delay 0-255")
	cmd.MarkFlagsMutuallyExclusive("gif", "folder")
	return cmd
}
