package notifier

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"SpendQueue/internal/fund"
	"SpendQueue/internal/model"
	"SpendQueue/internal/recorder"
)

// FormatStatus formats the status report.
func FormatStatus(st Styler, rep fund.StatusReport) string {
	var b strings.Builder
	if rep.GloballyPaused {
		b.WriteString(st.Bold("*** ALL QUEUES PAUSED ***") + "\n")
		b.WriteString("Run `sq unpause` to resume accruing.\n")
		return b.String()
	}

	if rep.Paused {
		b.WriteString(fmt.Sprintf("Queue %s is paused, nothing accrues until `sq unpause --queue`.\n", st.Bold(rep.Queue)))
	}
	b.WriteString(fmt.Sprintf("Currently available free budget: $%s\n", st.Bold(rep.Balance.String())))

	if rep.Head == nil {
		b.WriteString("There's no next item in the queue, add one!\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("The next item in the queue is %s for $%s\n",
		itemName(st, *rep.Head, true), st.Bold(rep.Head.Amount.String())))
	if rep.Purchasable {
		b.WriteString(st.Bold("*** NEXT ITEM PURCHASEABLE ***") + "\n")
	}
	return b.String()
}

// FormatQueue lists the pending items, head first. Items with a purchase
// link are shown in italics.
func FormatQueue(st Styler, q *model.Queue) string {
	if len(q.FuturePurchases) == 0 {
		return "Nothing queued.\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, item := range q.FuturePurchases {
		fmt.Fprintf(w, "%s\t$%s\n", itemName(st, item, false), item.Amount)
	}
	w.Flush()
	return b.String()
}

// FormatPast lists completed purchases in the order they were made.
func FormatPast(q *model.Queue) string {
	if len(q.PastPurchases) == 0 {
		return "Nothing bought yet.\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, item := range q.PastPurchases {
		ts := ""
		if item.TimePurchased != nil {
			ts = item.TimePurchased.String()
		}
		fmt.Fprintf(w, "%s\t$%s\t%s\n", item.Name, item.Amount, ts)
	}
	w.Flush()
	return b.String()
}

// FormatPurchase confirms a purchase.
func FormatPurchase(st Styler, res fund.BuyResult) string {
	return fmt.Sprintf("Bought %s for $%s. Remaining: $%s\n",
		st.Bold(res.Item.Name), st.Bold(res.Item.Amount.String()), st.Bold(res.Balance.String()))
}

// FormatBump describes where the old head went.
func FormatBump(st Styler, res fund.BumpResult) string {
	return fmt.Sprintf("Moved %s from head of queue to position %s. Next item is now %s.\n",
		st.Bold(res.Item.Name), st.Bold(fmt.Sprint(res.Position+1)), st.Bold(res.NewHead.Name))
}

// FormatAdded confirms a newly queued item.
func FormatAdded(item model.Item, prepend bool) string {
	where := "end"
	if prepend {
		where = "head"
	}
	return fmt.Sprintf("Adding %q for $%s to the %s of the list.\n", item.Name, item.Amount, where)
}

// FormatQueues lists the queue directory, marking the selected queue.
func FormatQueues(st Styler, queues []fund.QueueSummary, globallyPaused bool) string {
	var b strings.Builder
	if globallyPaused {
		b.WriteString(st.Bold("*** ALL QUEUES PAUSED ***") + "\n")
	}
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, q := range queues {
		marker := " "
		name := q.Name
		if q.Selected {
			marker = "*"
			name = st.Bold(name)
		}
		state := ""
		if q.Paused {
			state = "paused"
		}
		fmt.Fprintf(w, "%s %s\t$%s\t%d pending\t$%.2f / %d days\t%s\n",
			marker, name, q.Balance, q.Pending, q.Income.Amount, q.Income.IntervalInDays, state)
	}
	w.Flush()
	return b.String()
}

// FormatHistory lists recorded events, newest first.
func FormatHistory(events []recorder.Event) string {
	if len(events) == 0 {
		return "No history recorded.\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, e := range events {
		amount := ""
		if e.Amount != "" {
			if m, err := model.ParseMoney(e.Amount); err == nil {
				amount = "$" + m.String()
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Time().Format(time.DateTime), e.Kind, e.Queue, e.Detail, amount)
	}
	w.Flush()
	return b.String()
}

func itemName(st Styler, item model.Item, bold bool) string {
	name := item.Name
	if item.PurchaseLink != nil {
		name = st.Italic(name)
	}
	if bold {
		name = st.Bold(name)
	}
	return name
}
