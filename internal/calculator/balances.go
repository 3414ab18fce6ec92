package calculator

import (
	"sort"

	"github.com/mmynk/spendboard/internal/models"
)

// settleEpsilon ignores floating point noise when matching debts.
const settleEpsilon = 0.01

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	MemberID  string
	Name      string
	Net       float64 // Positive = owed money, Negative = owes money
	TotalPaid float64 // Total amount fronted
	TotalOwed float64 // Total of this member's equal shares
}

// DebtEdge represents a suggested payment from one person to another.
type DebtEdge struct {
	From   string // MemberID of the person who owes
	To     string // MemberID of the person who is owed
	Amount float64
}

// ledger accumulates balances for one computation. It never escapes the
// call that created it.
type ledger struct {
	order []*MemberBalance
	index map[string]*MemberBalance
}

func newLedger(capacity int) *ledger {
	return &ledger{
		order: make([]*MemberBalance, 0, capacity),
		index: make(map[string]*MemberBalance, capacity),
	}
}

func (l *ledger) entry(key, id, name string) *MemberBalance {
	if b, ok := l.index[key]; ok {
		return b
	}
	b := &MemberBalance{MemberID: id, Name: name}
	l.index[key] = b
	l.order = append(l.order, b)
	return b
}

func (l *ledger) finalize() []MemberBalance {
	out := make([]MemberBalance, len(l.order))
	for i, b := range l.order {
		b.Net = b.TotalPaid - b.TotalOwed
		out[i] = *b
	}
	return out
}

// GroupBalances computes equal-split net balances for one group.
//
// Algorithm:
//   - each expense of amount A in the group is split into N shares of A/N,
//     one owed by every member
//   - the payer (PaidByUID, else CreatedBy) is credited A
//   - a payer who is not a current member is added with their display name
//
// Groups with no resolvable members yield no balances.
func GroupBalances(group models.Group, expenses []models.Expense) []MemberBalance {
	members := ResolveMembers(group)
	if len(members) == 0 {
		return nil
	}

	l := newLedger(len(members))
	for _, m := range members {
		l.entry(memberKey(m.UID, m.Name), m.UID, m.Name)
	}

	for _, e := range expenses {
		if e.GroupID != group.ID {
			continue
		}
		payerID := e.Payer()
		if payerID == "" && e.PaidByName == "" {
			// Nobody to credit; skipping keeps the group balanced.
			continue
		}

		share, err := EqualShare(e.Amount, len(members))
		if err != nil {
			return nil
		}
		for _, m := range members {
			l.entry(memberKey(m.UID, m.Name), m.UID, m.Name).TotalOwed += share
		}

		payer := findPayer(l, members, payerID, e.PaidByName)
		payer.TotalPaid += e.Amount
	}

	return l.finalize()
}

// findPayer returns the ledger entry for the payer, adding one when the
// payer is not among the members.
func findPayer(l *ledger, members []models.Member, payerID, payerName string) *MemberBalance {
	for _, m := range members {
		if payerID != "" && m.UID == payerID {
			return l.entry(memberKey(m.UID, m.Name), m.UID, m.Name)
		}
		if payerID == "" && m.UID == "" && m.Name == payerName {
			return l.entry(memberKey(m.UID, m.Name), m.UID, m.Name)
		}
	}
	name := payerName
	if name == "" {
		name = payerID
	}
	return l.entry(memberKey(payerID, name), payerID, name)
}

// OverallBalances sums every member's net across all groups. Members are
// keyed by ID, falling back to display name, so two people sharing a name
// and lacking IDs are merged.
func OverallBalances(groups []models.Group, expenses []models.Expense) []MemberBalance {
	l := newLedger(len(groups))
	for _, g := range groups {
		for _, b := range GroupBalances(g, expenses) {
			acc := l.entry(memberKey(b.MemberID, b.Name), b.MemberID, b.Name)
			acc.TotalPaid += b.TotalPaid
			acc.TotalOwed += b.TotalOwed
		}
	}
	return l.finalize()
}

func memberKey(id, name string) string {
	if id != "" {
		return id
	}
	return "name:" + name
}

// SuggestSettlements turns net balances into a short list of payments that
// clear them. Debtors and creditors are matched greedily, largest first.
func SuggestSettlements(balances []MemberBalance) []DebtEdge {
	type party struct {
		id     string
		amount float64
	}

	var creditors, debtors []party
	for _, b := range balances {
		id := b.MemberID
		if id == "" {
			id = b.Name
		}
		if b.Net > settleEpsilon {
			creditors = append(creditors, party{id: id, amount: b.Net})
		} else if b.Net < -settleEpsilon {
			debtors = append(debtors, party{id: id, amount: -b.Net})
		}
	}
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].amount > creditors[j].amount })
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].amount > debtors[j].amount })

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].amount
		if creditors[j].amount < amount {
			amount = creditors[j].amount
		}

		if amount > settleEpsilon {
			edges = append(edges, DebtEdge{From: debtors[i].id, To: creditors[j].id, Amount: amount})
		}

		debtors[i].amount -= amount
		creditors[j].amount -= amount

		if debtors[i].amount < settleEpsilon {
			i++
		}
		if creditors[j].amount < settleEpsilon {
			j++
		}
	}
	return edges
}
