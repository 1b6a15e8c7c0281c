package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"SpendQueue/internal/fund"
	"SpendQueue/internal/model"
	"SpendQueue/internal/notifier"
	"SpendQueue/internal/purchase"
	"SpendQueue/internal/scheduler"
)

// moneyFlag is a decimal flag that remembers whether it was given.
type moneyFlag struct {
	value model.Money
	set   bool
}

var _ pflag.Value = (*moneyFlag)(nil)

func (f *moneyFlag) String() string {
	if !f.set {
		return ""
	}
	return f.value.String()
}

func (f *moneyFlag) Set(s string) error {
	m, err := model.ParseMoney(strings.TrimPrefix(s, "$"))
	if err != nil {
		return err
	}
	if m.IsNegative() {
		return purchase.ErrNegativeAmount
	}
	f.value, f.set = m, true
	return nil
}

func (f *moneyFlag) Type() string { return "decimal" }

// Ptr returns nil when the flag was not given.
func (f *moneyFlag) Ptr() *model.Money {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

// rejected turns a domain rejection into a warning so the command still
// exits cleanly; any other error is passed through.
func rejected(err error) error {
	if err != nil && purchase.IsRejection(err) {
		log.Warn().Msg(err.Error())
		return nil
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sq",
		Short: "The tiniest spending queue",
		Long: `sq accrues a budget continuously and lets you buy the next item in a
queue once enough money has built up.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: a.runStatus,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default ~/.config/sq/config.yaml)")
	root.PersistentFlags().StringVar(&a.statePath, "state", "", "Path to state file (overrides config)")

	root.AddCommand(
		&cobra.Command{Use: "status", Short: "Report the current state", Args: cobra.NoArgs, RunE: a.runStatus},
		a.budgetCmd(),
		a.buyCmd(),
		&cobra.Command{Use: "list", Short: "Print items remaining to be bought", Args: cobra.NoArgs, RunE: a.runList},
		&cobra.Command{Use: "past", Short: "Print items that were already bought", Args: cobra.NoArgs, RunE: a.runPast},
		&cobra.Command{Use: "bump", Short: "Move the head of the queue to a random later spot", Args: cobra.NoArgs, RunE: a.runBump},
		&cobra.Command{Use: "delete", Short: "Delete the item at the head of the queue", Args: cobra.NoArgs, RunE: a.runDelete},
		a.pauseCmd(true),
		a.pauseCmd(false),
		a.addCmd(),
		a.queueCmd(),
		a.historyCmd(),
		a.watchCmd(),
	)
	return root
}

func (a *app) runStatus(cmd *cobra.Command, _ []string) error {
	rep, err := a.fund.Status()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), notifier.FormatStatus(a.style, rep))
	return nil
}

func (a *app) budgetCmd() *cobra.Command {
	var (
		amount   float64
		interval uint64
	)
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Change the income of the selected queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.fund.SetBudget(amount, interval); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated income to $%.2f per %d days.\n", amount, interval)
			return nil
		},
	}
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Amount of money budgeted per interval")
	cmd.Flags().Uint64VarP(&interval, "interval", "i", 30, "Interval of the budget, in days")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (a *app) buyCmd() *cobra.Command {
	var (
		noOpen bool
		peek   bool
		force  bool
		price  moneyFlag
	)
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Mark the head item as bought if it can be afforded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if peek {
				return a.peek(cmd.Context())
			}

			req := fund.BuyRequest{Price: price.Ptr(), Force: force}
			if !price.set && a.interactive {
				req.Confirm = a.confirmPrice
			}
			res, err := a.fund.Buy(req)
			if err != nil {
				return rejected(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), notifier.FormatPurchase(a.style, res))

			// The purchase is already saved; a failing opener cannot undo it.
			if noOpen {
				return nil
			}
			link := res.Item.Link()
			if link == "" {
				log.Info().Msg("would open purchase link, none present")
				return nil
			}
			return a.opener.Open(cmd.Context(), link)
		},
	}
	cmd.Flags().BoolVarP(&noOpen, "no-open", "n", false, "Don't open the purchase URL")
	cmd.Flags().BoolVar(&peek, "peek", false, "Only open the purchase URL of the head item")
	cmd.Flags().VarP(&price, "price", "p", "Actual price, if it no longer matches the list")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Buy even if the balance doesn't cover it")
	return cmd
}

func (a *app) confirmPrice(head model.Item, _ model.Money) (model.Money, error) {
	ok, err := a.prompt.YesNo(fmt.Sprintf("Did %s cost $%s?", head.Name, head.Amount))
	if err != nil {
		return model.Money{}, err
	}
	if ok {
		return head.Amount, nil
	}
	return a.prompt.Amount("What did it actually cost?")
}

func (a *app) peek(ctx context.Context) error {
	_, link, err := a.fund.Peek()
	if errors.Is(err, purchase.ErrNoLink) {
		log.Info().Msg("would open purchase link, none present")
		return nil
	}
	if err != nil {
		return rejected(err)
	}
	return a.opener.Open(ctx, link)
}

func (a *app) runList(cmd *cobra.Command, _ []string) error {
	q, err := a.fund.Selected()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), notifier.FormatQueue(a.style, q))
	return nil
}

func (a *app) runPast(cmd *cobra.Command, _ []string) error {
	q, err := a.fund.Selected()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), notifier.FormatPast(q))
	return nil
}

func (a *app) runBump(cmd *cobra.Command, args []string) error {
	res, err := a.fund.Bump()
	if err != nil {
		return rejected(err)
	}
	fmt.Fprint(cmd.OutOrStdout(), notifier.FormatBump(a.style, res))
	return a.runStatus(cmd, args)
}

func (a *app) runDelete(cmd *cobra.Command, args []string) error {
	item, err := a.fund.Delete()
	if err != nil {
		return rejected(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted item at head of queue: %s\n", item.Name)
	return a.runStatus(cmd, args)
}

func (a *app) pauseCmd(pause bool) *cobra.Command {
	var queueOnly bool
	use, short := "unpause", "Resume accruing"
	if pause {
		use, short = "pause", "Stop accruing; paused time is never credited"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			switch {
			case queueOnly && pause:
				err = a.fund.PauseQueue()
			case queueOnly:
				err = a.fund.UnpauseQueue()
			case pause:
				err = a.fund.Pause()
			default:
				err = a.fund.Unpause()
			}
			if err != nil {
				return err
			}
			scope := "All queues"
			if queueOnly {
				scope = "Selected queue"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %sd.\n", scope, use)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&queueOnly, "queue", "q", false, "Only the selected queue")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	var (
		prepend bool
		price   moneyFlag
		link    string
	)
	cmd := &cobra.Command{
		Use:   "add <words...>",
		Short: "Add an item to the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item := model.Item{Name: strings.Join(args, " ")}

			if price.set {
				item.Amount = price.value
			} else {
				amount, err := a.prompt.Amount("What does this cost?:")
				if err != nil {
					return err
				}
				item.Amount = amount
			}

			if !cmd.Flags().Changed("link") {
				answer, err := a.prompt.Line("Do you have a purchase URL? (Leave empty for no)")
				if err != nil {
					return err
				}
				link = answer
			}
			if link != "" {
				item.PurchaseLink = &link
			}

			if err := a.fund.Add(item, prepend); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), notifier.FormatAdded(item, prepend))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&prepend, "prepend", "p", false, "Put the item at the head of the queue instead of the end")
	cmd.Flags().Var(&price, "price", "Price, skips the prompt")
	cmd.Flags().StringVar(&link, "link", "", "Purchase URL, skips the prompt")
	return cmd
}

func (a *app) queueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage queues",
	}

	var name string
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.fund.NewQueue(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created queue %s.\n", a.style.Bold(strings.TrimSpace(name)))
			return nil
		},
	}
	newCmd.Flags().StringVarP(&name, "name", "n", "", "What to name the new queue, ie 'books'")
	_ = newCmd.MarkFlagRequired("name")

	selectCmd := &cobra.Command{
		Use:   "select <name>",
		Short: "Select a queue as active (not implemented)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.fund.SelectQueue(args[0])
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all queues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			queues, paused, err := a.fund.Queues()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), notifier.FormatQueues(a.style, queues, paused))
			return nil
		},
	}

	cmd.AddCommand(newCmd, selectCmd, listCmd)
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded purchases and budget changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.HistoryDB == "" {
				log.Info().Msg("history is disabled, set history_db in the config or SQ_HISTORY_DB")
			}
			events, err := a.fund.History(limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), notifier.FormatHistory(events))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of events to show")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var spec string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the status on a schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if spec == "" {
				spec = a.cfg.WatchCron
			}
			out := cmd.OutOrStdout()
			sched := scheduler.NewScheduler(a.fund, func(rep fund.StatusReport) {
				fmt.Fprintf(out, "--- %s ---\n", time.Now().Format(time.DateTime))
				fmt.Fprint(out, notifier.FormatStatus(a.style, rep))
			})
			if err := sched.Register(spec); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.Info().Str("schedule", spec).Msg("watching, press Ctrl+C to stop")
			sched.Run(ctx)
			return nil
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "Cron expression or descriptor (default from config, @every 1m)")
	return cmd
}
