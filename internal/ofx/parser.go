// Package ofx reads OFX/QFX bank and credit card statements into ledger
// transactions. Imported money is unassigned until the user budgets it.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/zerobudget/internal/model"
)

// UnknownPayee names the payee of statement lines that carry no name at all.
const UnknownPayee = "Unknown payee"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Entry is one statement line converted to a transaction.
type Entry struct {
	FITID       string
	Account     string
	Kind        string
	Transaction model.Transaction
}

// Statement is everything read from one OFX file.
type Statement struct {
	Entries []Entry
	// Accounts lists the account ids seen, sorted.
	Accounts []string
	// Duplicates counts lines skipped because their FITID was already read.
	Duplicates int
	// Rejected counts lines whose amount could not be represented exactly.
	Rejected int
}

// Transactions returns the transactions of every entry, in file order.
func (s *Statement) Transactions() []model.Transaction {
	transactions := make([]model.Transaction, len(s.Entries))
	for i, e := range s.Entries {
		transactions[i] = e.Transaction
	}
	return transactions
}

// Merge combines statements read from several files into one, skipping
// entries whose FITID an earlier statement already had for the same account.
func Merge(statements ...*Statement) *Statement {
	merged := &Statement{}
	seen := make(map[string]bool)
	accounts := make(map[string]bool)

	for _, stmt := range statements {
		merged.Duplicates += stmt.Duplicates
		merged.Rejected += stmt.Rejected
		for _, account := range stmt.Accounts {
			accounts[account] = true
		}
		for _, e := range stmt.Entries {
			key := entryKey(e.Account, e.FITID)
			if e.FITID != "" && seen[key] {
				merged.Duplicates++
				continue
			}
			seen[key] = true
			merged.Entries = append(merged.Entries, e)
		}
	}

	for account := range accounts {
		merged.Accounts = append(merged.Accounts, account)
	}
	sort.Strings(merged.Accounts)
	return merged
}

func entryKey(account, fitID string) string {
	return account + "\x00" + fitID
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Fix SGML opening tags that lost their closing bracket
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file. Lines repeating an already seen FITID of
// the same account are skipped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*Statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	stmt := &Statement{}
	seen := make(map[string]bool)
	accounts := make(map[string]bool)
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if bank, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			account := string(bank.BankAcctFrom.AcctID)
			accounts[account] = true
			p.collect(stmt, seen, account, bank.BankTranList)
		}
	}

	for _, msg := range resp.CreditCard {
		if card, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			account := string(card.CCAcctFrom.AcctID)
			accounts[account] = true
			p.collect(stmt, seen, account, card.BankTranList)
		}
	}

	for account := range accounts {
		if account != "" {
			stmt.Accounts = append(stmt.Accounts, account)
		}
	}
	sort.Strings(stmt.Accounts)

	slog.Info("Parsed OFX file",
		"total_transactions", len(stmt.Entries),
		"duplicates", stmt.Duplicates,
		"rejected", stmt.Rejected,
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return stmt, nil
}

func (p *Parser) collect(stmt *Statement, seen map[string]bool, account string, list *ofxgo.TransactionList) {
	if list == nil {
		return
	}
	for _, ofxTx := range list.Transactions {
		fitID := string(ofxTx.FiTID)
		key := entryKey(account, fitID)
		if fitID != "" && seen[key] {
			stmt.Duplicates++
			slog.Debug("Skipping duplicate OFX transaction", "account", account, "fitid", fitID)
			continue
		}
		seen[key] = true

		entry, err := p.convertTransaction(ofxTx, account)
		if err != nil {
			stmt.Rejected++
			slog.Warn("Skipping OFX transaction", "account", account, "fitid", fitID, "error", err)
			continue
		}
		stmt.Entries = append(stmt.Entries, entry)
	}
}

// convertTransaction converts an OFX transaction into an unassigned ledger transaction.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, account string) (Entry, error) {
	amount, err := convertAmount(ofxTx.TrnAmt)
	if err != nil {
		return Entry{}, err
	}

	payee := p.extractMerchantName(ofxTx)
	if payee == "" {
		payee = UnknownPayee
	}

	description := strings.TrimSpace(string(ofxTx.Name))
	if memo := strings.TrimSpace(string(ofxTx.Memo)); memo != "" && memo != description {
		description = strings.TrimSpace(description + " " + memo)
	}
	if ofxTx.CheckNum != "" {
		description = strings.TrimSpace(fmt.Sprintf("%s (check %s)", description, string(ofxTx.CheckNum)))
	}

	return Entry{
		FITID:   string(ofxTx.FiTID),
		Account: account,
		Kind:    ofxTx.TrnType.String(),
		Transaction: model.Transaction{
			Date:        model.NormalizeDate(ofxTx.DtPosted.Time),
			Description: description,
			PayeeName:   payee,
			CategoryID:  model.UnassignedCategoryID,
			Amount:      amount,
		},
	}, nil
}

// convertAmount turns an OFX amount into minor units. OFX amounts are already
// signed: debits are negative, credits positive.
func convertAmount(amount ofxgo.Amount) (model.Amount, error) {
	raw := amount.FloatString(8)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %s: %w", raw, err)
	}
	return model.AmountFromDecimal(d)
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)

	// Sometimes MEMO has better merchant info
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Clean up date patterns like "MM/DD" at the beginning
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
