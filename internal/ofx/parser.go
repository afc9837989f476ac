// Package ofx imports OFX/QFX bank and credit card statements as transactions
// that the context builder can aggregate.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML exports sometimes drop the closing bracket of a bare tag line.
	unclosedTagPattern = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	// Leading "MM/DD " left behind by card processors.
	datePrefixPattern = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

var processorPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// Categories assigned from the OFX transaction type alone.
var typeCategories = map[string]string{
	"INT":    "Interest",
	"DIV":    "Interest",
	"FEE":    "Bank Fees",
	"SRVCHG": "Bank Fees",
	"ATM":    "Cash",
	"CASH":   "Cash",
}

// Statement is the merged content of one OFX document.
type Statement struct {
	Period       model.TimeRange
	Transactions []model.Transaction
	Accounts     []string
}

// Parser reads OFX/QFX documents.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger uses the default logger.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: common.SourceLogger(logger, "ofx")}
}

// ParseFile opens and parses the statement at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OFX file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return p.Parse(ctx, f)
}

// Parse reads every bank and credit card statement in r.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*Statement, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX data: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(normalize(string(raw))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX data: %w", err)
	}

	stmt := &Statement{}
	accounts := make(map[string]bool)

	for _, msg := range resp.Bank {
		bank, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		account := string(bank.BankAcctFrom.AcctID)
		accounts[account] = true
		p.mergeList(stmt, bank.BankTranList, account)
	}

	for _, msg := range resp.CreditCard {
		card, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		account := string(card.CCAcctFrom.AcctID)
		accounts[account] = true
		p.mergeList(stmt, card.BankTranList, account)
	}

	for account := range accounts {
		if account != "" {
			stmt.Accounts = append(stmt.Accounts, account)
		}
	}
	sort.Strings(stmt.Accounts)

	p.logger.Info("parsed OFX statement",
		"transactions", len(stmt.Transactions),
		"accounts", len(stmt.Accounts))

	return stmt, nil
}

// mergeList appends the transactions of list and widens the statement period.
func (p *Parser) mergeList(stmt *Statement, list *ofxgo.TransactionList, account string) {
	if list == nil {
		return
	}

	start, end := list.DtStart.Time, list.DtEnd.Time
	if !start.IsZero() && (stmt.Period.Start.IsZero() || start.Before(stmt.Period.Start)) {
		stmt.Period.Start = start
	}
	if end.After(stmt.Period.End) {
		stmt.Period.End = end
	}

	for i := range list.Transactions {
		txn, err := p.convert(&list.Transactions[i], account)
		if err != nil {
			p.logger.Warn("skipping transaction",
				"fitid", string(list.Transactions[i].FiTID),
				"account", account,
				"error", err)
			continue
		}
		stmt.Transactions = append(stmt.Transactions, txn)
	}
}

// convert maps an OFX transaction. Credits become income and debits
// expenses; the stored amount is always positive.
func (p *Parser) convert(src *ofxgo.Transaction, account string) (model.Transaction, error) {
	amount, err := decimal.NewFromString(src.TrnAmt.FloatString(2))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}

	direction := model.DirectionExpense
	if amount.IsPositive() {
		direction = model.DirectionIncome
	}

	txnType := src.TrnType.String()
	category := typeCategories[txnType]
	if category == "" && direction == model.DirectionIncome {
		category = "Income"
	}

	txn := model.Transaction{
		ID:           string(src.FiTID),
		Date:         src.DtPosted.Time,
		Name:         strings.TrimSpace(string(src.Name)),
		MerchantName: merchantName(src),
		Amount:       amount.Abs(),
		Direction:    direction,
		AccountID:    account,
		Type:         txnType,
		Category:     category,
	}
	txn.Hash = txn.GenerateHash()
	return txn, nil
}

// merchantName prefers the payee, then a cleaned NAME, then MEMO when NAME is generic.
func merchantName(src *ofxgo.Transaction) string {
	if src.Payee != nil && src.Payee.Name != "" {
		return strings.TrimSpace(string(src.Payee.Name))
	}

	name := strings.TrimSpace(string(src.Name))
	if src.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(src.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range processorPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(datePrefixPattern.ReplaceAllString(name, ""))
}

func normalize(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagPattern.ReplaceAllString(content, "$1>")
}
