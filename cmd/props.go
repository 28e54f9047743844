package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/monthly-invoicer/internal/config"
	"github.com/Tiliavir/monthly-invoicer/internal/diagnose"
)

var propsForce bool

var propsCmd = &cobra.Command{
	Use:   "props",
	Short: "Manage the business settings in the property store",
}

var propsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed every property with its default",
	Long: `init writes the built-in default of every property that is not set yet.
With --force every property is reset to its default, discarding edits.`,
	Args: cobra.NoArgs,
	RunE: runPropsInit,
}

var propsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every property with its effective value",
	Args:  cobra.NoArgs,
	RunE:  runPropsList,
}

var propsGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the effective value of a property",
	Args:  cobra.ExactArgs(1),
	RunE:  runPropsGet,
}

var propsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Store a property value",
	Args:  cobra.ExactArgs(2),
	RunE:  runPropsSet,
}

var propsUnsetCmd = &cobra.Command{
	Use:   "unset KEY",
	Short: "Delete a stored property so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE:  runPropsUnset,
}

func init() {
	propsInitCmd.Flags().BoolVar(&propsForce, "force", false, "Reset properties that are already set")
	propsCmd.AddCommand(propsInitCmd)
	propsCmd.AddCommand(propsListCmd)
	propsCmd.AddCommand(propsGetCmd)
	propsCmd.AddCommand(propsSetCmd)
	propsCmd.AddCommand(propsUnsetCmd)
}

func runPropsInit(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	written, err := config.InitializeProperties(cmd.Context(), a.props, propsForce)
	if err != nil {
		return err
	}
	fmt.Printf("Initialized %d of %d properties.\n", len(written), len(config.Catalog))
	for _, k := range written {
		fmt.Printf("  %s\n", k)
	}

	props, err := a.resolve(cmd.Context())
	if err != nil {
		return err
	}
	if err := props.Validate(); err != nil {
		fmt.Printf("\nStill to do: %v\n", err)
	}
	return nil
}

func runPropsList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	lines, err := diagnose.Properties(cmd.Context(), a.props)
	if err != nil {
		return err
	}
	for _, l := range lines {
		mark := " "
		if l.Required && l.Source == "unset" {
			mark = "!"
		}
		fmt.Printf("%s %-26s %-8s %s\n", mark, l.Key, l.Source, l.Value)
	}
	return nil
}

func runPropsGet(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	v, ok, err := a.props.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !ok || v == "" {
		p, known := config.Lookup(args[0])
		if !known && !ok {
			return fmt.Errorf("unknown property %s", args[0])
		}
		v = p.Default
	}
	fmt.Println(v)
	return nil
}

func runPropsSet(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	key, value := args[0], args[1]
	if _, known := config.Lookup(key); !known {
		fmt.Fprintf(os.Stderr, "Warning: %s is not a known property; it is stored but unused.\n", key)
	}
	if err := a.props.Set(cmd.Context(), key, value); err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", key, value)
	return nil
}

func runPropsUnset(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.props.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("%s unset\n", args[0])
	return nil
}
