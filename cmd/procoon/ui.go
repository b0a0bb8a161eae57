package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"procoon/internal/game"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

type landPricesPayload struct {
	Prices []game.LandPriceView `json:"prices"`
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func promptFloat(label string, min float64) (float64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			printWarn("Enter a valid number.")
			continue
		}
		if v <= min {
			printWarn(fmt.Sprintf("Value must be > %.4f", min))
			continue
		}
		return v, nil
	}
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(strings.ReplaceAll(text, ",", ""), 10, 64)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func renderNewGame(raw map[string]any) error {
	save, err := decodeInto[game.SaveData](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== %s ==\n", save.CompanyName)
	printInfo(fmt.Sprintf("Game time : %s", save.GameTime.Format("2006-01-02 15:04")))
	printInfo(fmt.Sprintf("Cash      : %s", rupiah(save.Finance.Cash)))
	printInfo(fmt.Sprintf("Land      : %.4f ha in %d city", save.Land.Total, len(save.Land.Locations)))
	printSuccess("New game ready.")
	return nil
}

func renderStatus(raw map[string]any) error {
	save, err := decodeInto[game.SaveData](raw)
	if err != nil {
		return err
	}

	accent.Printf("\n== %s ==\n", save.CompanyName)
	clock := save.GameTime.Format("Mon, 02 Jan 2006 15:04")
	if save.Paused {
		clock += warn.Sprint("  [PAUSED]")
	}
	printInfo("Game time : " + clock)
	printInfo("Market    : " + save.Market.Cycle)
	printInfo("Cash      : " + rupiah(save.Finance.Cash))
	printInfo(fmt.Sprintf("Land      : %.4f ha total, %.4f ha in use", save.Land.Total, save.Land.Used))

	if len(save.ConstructionQueue) > 0 {
		accent.Println("\nConstruction")
		for _, p := range save.ConstructionQueue {
			fmt.Printf("  %-10s %-10s %5d units  %3d days  %s\n",
				p.PropertyType, p.Variant, p.Units, p.DurationDays, p.ID)
		}
	}
	if len(save.Assets) > 0 {
		accent.Println("\nAssets")
		for _, a := range save.Assets {
			line := fmt.Sprintf("  %-10s %-10s %5d units  %-7s", a.Name, a.Variant, a.Units, a.Finance.Mode)
			if a.Finance.Mode == game.FinanceModeRented {
				line += fmt.Sprintf("  occ %d/%d", a.Finance.OccupiedUnits, a.Units)
			}
			if a.Finance.Sell != nil && a.Finance.Sell.Status == game.ListingStatusListed {
				line += warn.Sprint("  [LISTED]")
			}
			fmt.Println(line + "  " + a.ID)
		}
	}
	if active := activeLoans(save.Finance.Loans); len(active) > 0 {
		accent.Println("\nLoans")
		for _, l := range active {
			fmt.Printf("  %s  outstanding %s  %d months left\n", l.ID, rupiah(l.Outstanding), l.RemainingMonths)
		}
	}
	return nil
}

func activeLoans(loans []*game.Loan) []*game.Loan {
	var out []*game.Loan
	for _, l := range loans {
		if l.Status == game.LoanStatusActive {
			out = append(out, l)
		}
	}
	return out
}

func renderLandPrices(raw map[string]any) error {
	payload, err := decodeInto[landPricesPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== LAND PRICES (per m2, this month) ==")
	for _, p := range payload.Prices {
		fmt.Printf("  %-16s %-9s %16s\n", p.City.Name, p.City.Tier, rupiah(p.Quote.FinalPrice))
	}
	return nil
}

func renderLandHolding(raw map[string]any) error {
	loc, err := decodeInto[game.LandLocation](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Holding in %s: %.4f ha total, %.4f ha in use.", loc.Name, loc.Total, loc.Used))
	return nil
}

func renderLandOrder(raw map[string]any) error {
	order, err := decodeInto[game.LandSellOrder](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Listed %d m2 in %s at %s/m2. Expected to sell in %d days.",
		order.M2, order.CityID, rupiah(order.PricePerM2), order.DurationDays))
	printInfo("Order ID: " + order.ID)
	return nil
}

func renderLandROI(raw map[string]any) error {
	view, err := decodeInto[game.LandROIView](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== LAND ROI: %s (%s) ==\n", view.CityID, view.Tier)
	printInfo(fmt.Sprintf("Invested        : %s", rupiah(view.Invested)))
	printInfo(fmt.Sprintf("Annual rate     : %.1f%%", view.AnnualRate*100))
	printInfo(fmt.Sprintf("After %d years   : %s", view.Years, rupiah(view.Projected)))
	return nil
}

func renderBuildPlan(raw map[string]any) error {
	plan, err := decodeInto[game.BuildPlan](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== BUILD PLAN: %s %s ==\n", plan.PropertyType, plan.Variant)
	printInfo(fmt.Sprintf("Units            : %d", plan.Units))
	printInfo(fmt.Sprintf("Land required    : %.4f ha", plan.LandArea))
	printInfo(fmt.Sprintf("Cost             : %s", rupiah(plan.Cost)))
	printInfo(fmt.Sprintf("Duration         : %d days", plan.DurationDays))
	printInfo(fmt.Sprintf("Projected income : %s / day", rupiah(plan.DailyIncome)))
	return nil
}

func renderProject(raw map[string]any) error {
	p, err := decodeInto[game.ConstructionProject](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Construction started: %s %s, %d units, done in %d days.",
		p.PropertyType, p.Variant, p.Units, p.DurationDays))
	printInfo("Project ID: " + p.ID)
	return nil
}

func renderRefund(raw map[string]any) error {
	refund, _ := raw["refund"].(float64)
	printWarn(fmt.Sprintf("Project cancelled. Refund: %s", rupiah(int64(refund))))
	return nil
}

func renderRentSimulation(raw map[string]any) error {
	sim, err := decodeInto[game.RentSimulation](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== RENT SIMULATION ==")
	printInfo(fmt.Sprintf("Occupancy range : %d - %d units", sim.MinOcc, sim.MaxOcc))
	printInfo(fmt.Sprintf("Demand          : %d%%", sim.DemandPercent))
	printInfo(fmt.Sprintf("Maintenance est : %s / unit / day", rupiah(sim.Maintenance)))
	switch sim.Risk {
	case "Healthy":
		printSuccess("Risk: " + sim.Risk)
	case "Dead Market":
		danger.Println("Risk: " + sim.Risk)
	default:
		printWarn("Risk: " + sim.Risk)
	}
	printInfo(sim.Warning)
	return nil
}

func renderROI(raw map[string]any) error {
	roi, err := decodeInto[game.ROIProjection](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== RENTAL ROI ==")
	printInfo(fmt.Sprintf("Net monthly : %s", rupiah(roi.NetMonthly)))
	printInfo(fmt.Sprintf("Over %d mo  : %s (%.2f%% of build cost)", roi.Months, rupiah(roi.NetPeriod), roi.ROIPercent))
	return nil
}

func renderSaleSimulation(raw map[string]any) error {
	sim, err := decodeInto[game.SaleSimulation](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== SALE SIMULATION ==")
	printInfo(fmt.Sprintf("Market unit ref : %s", rupiah(sim.MarketUnit)))
	printInfo(fmt.Sprintf("Price ratio     : %.2f", sim.Ratio))
	printInfo(fmt.Sprintf("Total proceeds  : %s", rupiah(sim.TotalPrice)))
	printInfo(fmt.Sprintf("Expected sale   : %d days (%s)", sim.DurationDays, sim.Risk))
	return nil
}

func renderPropertyListing(raw map[string]any) error {
	sale, err := decodeInto[game.PropertySale](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Listed at %s/unit, total %s. Expected to sell in %d days.",
		rupiah(sale.PricePerUnit), rupiah(sale.TotalPrice), sale.DurationDays))
	return nil
}

func renderLoan(raw map[string]any) error {
	loan, err := decodeInto[game.Loan](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== LOAN ==")
	printInfo("ID          : " + loan.ID)
	printInfo(fmt.Sprintf("Principal   : %s over %d years", rupiah(loan.Principal), loan.TenorYears))
	printInfo(fmt.Sprintf("Installment : %s / month", rupiah(loan.MonthlyInstallment)))
	printInfo(fmt.Sprintf("Outstanding : %s, %d months left", rupiah(loan.Outstanding), loan.RemainingMonths))
	if loan.Status == game.LoanStatusPaid {
		printSuccess("Loan fully paid.")
	}
	return nil
}

func renderCreditLimit(raw map[string]any) error {
	limit, _ := raw["credit_limit"].(float64)
	printInfo("Remaining credit limit: " + rupiah(int64(limit)))
	return nil
}

func renderReport(raw map[string]any) error {
	report, err := decodeInto[game.FinanceReport](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== FINANCE REPORT ==")
	printInfo("Cash            : " + rupiah(report.Cash))
	printInfo(fmt.Sprintf("Today           : +%s / -%s", rupiah(report.DailyIncome), rupiah(report.DailyExpense)))
	printInfo(fmt.Sprintf("This month      : +%s / -%s", rupiah(report.MonthlyIncome), rupiah(report.MonthlyExpense)))
	printInfo(fmt.Sprintf("This year       : +%s / -%s", rupiah(report.YearlyIncome), rupiah(report.YearlyExpense)))
	if report.LastDay != nil {
		net := report.LastDay.Net
		text := fmt.Sprintf("Last closed day : net %s", rupiah(net))
		if net < 0 {
			danger.Println(text)
		} else {
			printSuccess(text)
		}
	}
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func rupiah(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return "Rp " + sign + comma(v)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}
