package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cl "procoon/internal/cli"
	"procoon/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL
	slot := cfg.Slot

	root := &cobra.Command{
		Use:          "procoon",
		Short:        "Procoon property tycoon client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&slot, "slot", slot, "save slot name")

	root.AddCommand(
		newNewGameCmd(&apiBase, &slot),
		newStatusCmd(&apiBase, &slot),
		newPauseCmd(&apiBase, &slot, true),
		newPauseCmd(&apiBase, &slot, false),
		newLandCmd(&apiBase, &slot),
		newBuildCmd(&apiBase, &slot),
		newRentCmd(&apiBase, &slot),
		newSellCmd(&apiBase, &slot),
		newLoanCmd(&apiBase, &slot),
		newReportCmd(&apiBase, &slot),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase, slot *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"), strings.TrimSpace(*slot))
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newNewGameCmd(apiBase, slot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new game in the slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			company, err := promptRequired("Company name")
			if err != nil {
				return err
			}
			ceo, err := promptOptional("CEO name (optional)")
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			out, err := newClient(apiBase, slot).NewGame(ctx, company, ceo)
			if err != nil {
				return err
			}
			return renderNewGame(out)
		},
	}
}

func newStatusCmd(apiBase, slot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show company status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			out, err := newClient(apiBase, slot).State(ctx)
			if err != nil {
				return err
			}
			return renderStatus(out)
		},
	}
}

func newPauseCmd(apiBase, slot *string, pause bool) *cobra.Command {
	use, short := "pause", "Pause the game clock"
	if !pause {
		use, short = "resume", "Resume the game clock"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			client := newClient(apiBase, slot)
			var (
				out map[string]any
				err error
			)
			if pause {
				out, err = client.Pause(ctx)
			} else {
				out, err = client.Resume(ctx)
			}
			if err != nil {
				return err
			}
			if paused, _ := out["paused"].(bool); paused {
				printWarn("Game paused.")
			} else {
				printSuccess("Game running.")
			}
			return nil
		},
	}
}

func newLandCmd(apiBase, slot *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "land",
		Short: "Land market operations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "prices",
			Short: "Show monthly land prices per city",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).LandPrices(ctx)
				if err != nil {
					return err
				}
				return renderLandPrices(out)
			},
		},
		&cobra.Command{
			Use:   "buy",
			Short: "Buy hectares in a city",
			RunE: func(cmd *cobra.Command, args []string) error {
				city, err := promptRequired("City ID")
				if err != nil {
					return err
				}
				ha, err := promptFloat("Hectares", 0)
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).BuyLand(ctx, strings.ToLower(city), ha)
				if err != nil {
					return err
				}
				return renderLandHolding(out)
			},
		},
		&cobra.Command{
			Use:   "sell",
			Short: "List land for sale",
			RunE: func(cmd *cobra.Command, args []string) error {
				city, err := promptRequired("City ID")
				if err != nil {
					return err
				}
				m2, err := promptInt64("Square meters", 500)
				if err != nil {
					return err
				}
				price, err := promptInt64("Price per m2 (Rp)", 1)
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).SellLand(ctx, strings.ToLower(city), m2, price)
				if err != nil {
					return err
				}
				return renderLandOrder(out)
			},
		},
		&cobra.Command{
			Use:   "roi",
			Short: "Project land appreciation for a city",
			RunE: func(cmd *cobra.Command, args []string) error {
				city, err := promptRequired("City ID")
				if err != nil {
					return err
				}
				ha, err := promptFloat("Hectares", 0)
				if err != nil {
					return err
				}
				years, err := promptInt64("Years", 1)
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).LandROI(ctx, strings.ToLower(city), ha, int(years))
				if err != nil {
					return err
				}
				return renderLandROI(out)
			},
		},
		&cobra.Command{
			Use:   "cancel <order-id>",
			Short: "Cancel a land listing",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				if _, err := newClient(apiBase, slot).CancelLandSale(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Listing cancelled.")
				return nil
			},
		},
	)
	return cmd
}

func newBuildCmd(apiBase, slot *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Construction operations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "plan",
			Short: "Price a project without starting it",
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := promptBuildInput()
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).PlanBuild(ctx, in.propertyType, in.variant, in.units, in.towers, in.floors)
				if err != nil {
					return err
				}
				return renderBuildPlan(out)
			},
		},
		&cobra.Command{
			Use:   "start",
			Short: "Start a construction project",
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := promptBuildInput()
				if err != nil {
					return err
				}
				location, err := promptRequired("Location city ID")
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).StartBuild(ctx, in.propertyType, in.variant, in.units, in.towers, in.floors, strings.ToLower(location))
				if err != nil {
					return err
				}
				return renderProject(out)
			},
		},
		&cobra.Command{
			Use:   "cancel <project-id>",
			Short: "Cancel a project with a progress penalty",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).CancelBuild(ctx, args[0])
				if err != nil {
					return err
				}
				return renderRefund(out)
			},
		},
	)
	return cmd
}

type buildPrompt struct {
	propertyType string
	variant      string
	units        int
	towers       int
	floors       int
}

func promptBuildInput() (buildPrompt, error) {
	var in buildPrompt
	ptype, err := promptChoice("Property type", []string{"House", "ShopHouse", "Apartment"}, "House")
	if err != nil {
		return in, err
	}
	switch ptype {
	case "house":
		in.propertyType = "House"
	case "shophouse":
		in.propertyType = "ShopHouse"
	case "apartment":
		in.propertyType = "Apartment"
	}
	variant, err := promptRequired("Variant")
	if err != nil {
		return in, err
	}
	in.variant = variant

	if in.propertyType == "Apartment" {
		towers, err := promptInt64("Towers", 1)
		if err != nil {
			return in, err
		}
		floors, err := promptInt64("Floors per tower", 5)
		if err != nil {
			return in, err
		}
		in.towers = int(towers)
		in.floors = int(floors)
		return in, nil
	}

	units, err := promptInt64("Units", 1)
	if err != nil {
		return in, err
	}
	in.units = int(units)
	return in, nil
}

func newRentCmd(apiBase, slot *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rent",
		Short: "Rental market operations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "simulate <asset-id>",
			Short: "Preview market response to a rent price",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				price, err := promptInt64("Monthly rent per unit (Rp)", 1)
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).SimulateRent(ctx, args[0], price)
				if err != nil {
					return err
				}
				return renderRentSimulation(out)
			},
		},
		&cobra.Command{
			Use:   "set <asset-id>",
			Short: "Put an asset on the rental market",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				price, err := promptInt64("Monthly rent per unit (Rp)", 1)
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).SetRent(ctx, args[0], price)
				if err != nil {
					return err
				}
				printSuccess("Asset is now rented out.")
				return renderRentSimulation(out)
			},
		},
		&cobra.Command{
			Use:   "stop <asset-id>",
			Short: "Take an asset off the rental market",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				if _, err := newClient(apiBase, slot).StopRent(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Asset is idle again.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "roi <asset-id>",
			Short: "Project rental return over a horizon",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				months, err := promptInt64("Months", 1)
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).AssetROI(ctx, args[0], int(months))
				if err != nil {
					return err
				}
				return renderROI(out)
			},
		},
	)
	return cmd
}

func newSellCmd(apiBase, slot *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Property sale operations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "simulate <asset-id>",
			Short: "Preview market response to a sale price",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				price, err := promptInt64("Price per unit (Rp)", 1)
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).SimulateSale(ctx, args[0], price)
				if err != nil {
					return err
				}
				return renderSaleSimulation(out)
			},
		},
		&cobra.Command{
			Use:   "list <asset-id>",
			Short: "List an asset for sale",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				price, err := promptInt64("Price per unit (Rp)", 1)
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).SellProperty(ctx, args[0], price)
				if err != nil {
					return err
				}
				return renderPropertyListing(out)
			},
		},
		&cobra.Command{
			Use:   "cancel <asset-id>",
			Short: "Cancel an active sale listing",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				if _, err := newClient(apiBase, slot).CancelPropertySale(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Listing cancelled.")
				return nil
			},
		},
	)
	return cmd
}

func newLoanCmd(apiBase, slot *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan operations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "take",
			Short: "Take an amortizing loan",
			RunE: func(cmd *cobra.Command, args []string) error {
				principal, err := promptInt64("Principal (Rp)", 1)
				if err != nil {
					return err
				}
				tenor, err := promptInt64("Tenor years (1-5)", 1)
				if err != nil {
					return err
				}
				autoPay, err := promptChoice("Auto-pay", []string{"yes", "no"}, "yes")
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).TakeLoan(ctx, principal, int(tenor), autoPay == "yes")
				if err != nil {
					return err
				}
				return renderLoan(out)
			},
		},
		&cobra.Command{
			Use:   "pay <loan-id>",
			Short: "Pay one or more installments",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				months, err := promptInt64("Months to pay", 1)
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).PayLoan(ctx, args[0], int(months))
				if err != nil {
					return err
				}
				return renderLoan(out)
			},
		},
		&cobra.Command{
			Use:   "autopay <loan-id>",
			Short: "Toggle auto-pay for a loan",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				choice, err := promptChoice("Auto-pay", []string{"on", "off"}, "on")
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).SetLoanAutoPay(ctx, args[0], choice == "on")
				if err != nil {
					return err
				}
				return renderLoan(out)
			},
		},
		&cobra.Command{
			Use:   "limit",
			Short: "Show remaining credit limit",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				out, err := newClient(apiBase, slot).CreditLimit(ctx)
				if err != nil {
					return err
				}
				return renderCreditLimit(out)
			},
		},
	)
	return cmd
}

func newReportCmd(apiBase, slot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show the finance report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			out, err := newClient(apiBase, slot).Report(ctx)
			if err != nil {
				return err
			}
			return renderReport(out)
		},
	}
}
