package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/zerobudget/internal/cli"
	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/config"
	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/storage"
)

// useTestLedger points the commands at a fresh database whose budget starts in August 2020.
func useTestLedger(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "zb.db")
	previous := appConfig
	appConfig = config.Config{
		DatabasePath: dbPath,
		StartMonth:   model.NewMonth(2020, time.August),
		LogFormat:    "console",
		LogLevel:     slog.LevelWarn,
	}
	t.Cleanup(func() { appConfig = previous })
	return dbPath
}

// execute runs a freshly built command with args and stdin, returning its output.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	out, err := execute(t, cmd, "", args...)
	require.NoError(t, err, out)
	return out
}

// seedBudget creates a Bills group with Rent, an Everyday group with Groceries,
// and a 1000.00 paycheck in September 2020.
func seedBudget(t *testing.T) {
	t.Helper()

	mustExecute(t, groupsCmd(), "add", "Bills")
	mustExecute(t, groupsCmd(), "add", "Everyday")
	mustExecute(t, categoriesCmd(), "add", "Rent", "--group", "Bills")
	mustExecute(t, categoriesCmd(), "add", "Groceries", "--group", "Everyday")
	mustExecute(t, transactionsCmd(), "add", "--payee", "Employer", "--amount", "1000", "--date", "2020-09-01")
}

func TestBudgetCommands(t *testing.T) {
	useTestLedger(t)
	seedBudget(t)

	out := mustExecute(t, budgetCmd(), "set", "Rent", "600", "--month", "2020-09")
	assert.Contains(t, out, "Rent: budgeted 600.00 in September 2020")

	out = mustExecute(t, budgetCmd(), "show", "--month", "2020-09")
	assert.Contains(t, out, "September 2020")
	assert.Contains(t, out, "To be budgeted: 400.00")
	assert.Contains(t, out, "Bills")
	assert.Contains(t, out, "Rent")
	assert.Contains(t, out, "600.00")
	assert.Contains(t, out, "Groceries")

	// Carry-forward: October shows Rent still available and the same pool.
	out = mustExecute(t, budgetCmd(), "--month", "2020-10")
	assert.Contains(t, out, "October 2020")
	assert.Contains(t, out, "To be budgeted: 400.00")

	out = mustExecute(t, budgetCmd(), "from-last", "rent", "--month", "2020-10")
	assert.Contains(t, out, "Rent: budgeted 600.00 in October 2020")

	out = mustExecute(t, budgetCmd(), "from-last", "Rent", "--month", "2020-08")
	assert.Contains(t, out, "first month of the budget")

	out = mustExecute(t, budgetCmd(), "zero", "Rent", "--month", "2020-10")
	assert.Contains(t, out, "budget zeroed in October 2020")

	_, err := execute(t, budgetCmd(), "", "set", "Travel", "10", "--month", "2020-09")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = execute(t, budgetCmd(), "", "show", "--month", "2019-01")
	assert.ErrorIs(t, err, common.ErrMonthOutOfRange)
}

func TestBudgetClear(t *testing.T) {
	useTestLedger(t)
	seedBudget(t)
	mustExecute(t, budgetCmd(), "set", "Rent", "600", "--month", "2020-09")

	out, err := execute(t, budgetCmd(), "n\n", "clear", "--month", "2020-09")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing cleared.")

	out, err = execute(t, budgetCmd(), "y\n", "clear", "--month", "2020-09")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared")

	out = mustExecute(t, budgetCmd(), "show", "--month", "2020-09")
	assert.Contains(t, out, "To be budgeted: 1000.00")
}

func TestMonthCommands(t *testing.T) {
	useTestLedger(t)

	out := mustExecute(t, monthCmd(), "set", "2020-09")
	assert.Contains(t, out, "Selected September 2020")

	out = mustExecute(t, monthCmd(), "get")
	assert.Contains(t, out, "September 2020 (2020-09)")

	out = mustExecute(t, monthCmd(), "prev")
	assert.Contains(t, out, "Selected August 2020")

	out = mustExecute(t, monthCmd(), "prev")
	assert.Contains(t, out, "last month in that direction")

	out = mustExecute(t, monthCmd(), "list")
	assert.Contains(t, out, "* 2020-08  August 2020")
	assert.Contains(t, out, "  2020-09  September 2020")

	_, err := execute(t, monthCmd(), "", "set", "2020-07")
	assert.ErrorIs(t, err, common.ErrMonthOutOfRange)
}

func TestCategoryCommands(t *testing.T) {
	useTestLedger(t)
	seedBudget(t)

	mustExecute(t, categoriesCmd(), "add", "Utilities", "--group", "Bills")
	mustExecute(t, categoriesCmd(), "move", "Utilities", "0")
	mustExecute(t, categoriesCmd(), "rename", "Groceries", "Food")
	mustExecute(t, categoriesCmd(), "move-group", "Food", "Bills")

	out := mustExecute(t, categoriesCmd(), "list")
	bills := out[strings.Index(out, "Bills"):strings.Index(out, "Everyday")]
	assert.Less(t, strings.Index(bills, "Utilities"), strings.Index(bills, "Rent"))
	assert.Contains(t, bills, "Food")

	_, err := execute(t, categoriesCmd(), "", "add", "Rent")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = execute(t, categoriesCmd(), "", "move-group", "Food", "Bills")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	out, err = execute(t, categoriesCmd(), "n\n", "remove", "Food")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing removed.")
	assert.Contains(t, mustExecute(t, categoriesCmd(), "list"), "Food")

	out = mustExecute(t, categoriesCmd(), "remove", "Food", "--yes")
	assert.Contains(t, out, "Removed category Food")

	out = mustExecute(t, categoriesCmd(), "list")
	assert.NotContains(t, out, "Food")
}

func TestCategoriesAddCreatesDefaultGroup(t *testing.T) {
	useTestLedger(t)

	mustExecute(t, categoriesCmd(), "add", "Rent")

	out := mustExecute(t, groupsCmd(), "list")
	assert.Contains(t, out, "General")

	_, err := execute(t, groupsCmd(), "", "add", "general")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestTransactionCommands(t *testing.T) {
	useTestLedger(t)
	seedBudget(t)

	out := mustExecute(t, transactionsCmd(), "add",
		"--payee", "Corner Market", "--amount=-54.20", "--category", "Groceries", "--date", "2020-09-03")
	assert.Contains(t, out, "Recorded Corner Market -54.20 on 2020-09-03 (new payee)")

	out = mustExecute(t, transactionsCmd(), "list", "--month", "2020-09")
	assert.Contains(t, out, "Employer")
	assert.Contains(t, out, "Corner Market")
	assert.Contains(t, out, cli.ChartIcon+" 2 transactions, total 945.80")

	out = mustExecute(t, transactionsCmd(), "list", "--unassigned")
	assert.Contains(t, out, "1 transactions, total 1000.00")

	out = mustExecute(t, transactionsCmd(), "edit", "2", "--amount=-60", "--description", "weekly shop")
	assert.Contains(t, out, "Updated transaction 2")

	out = mustExecute(t, transactionsCmd(), "list", "--category", "groceries")
	assert.Contains(t, out, "-60.00")
	assert.Contains(t, out, "weekly shop")
	assert.Contains(t, out, "Corner Market")

	mustExecute(t, transactionsCmd(), "delete", "2")
	out = mustExecute(t, transactionsCmd(), "list")
	assert.Contains(t, out, "1 transactions")

	_, err := execute(t, transactionsCmd(), "", "edit", "42", "--amount", "1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = execute(t, transactionsCmd(), "", "add", "--payee", "X", "--amount", "1", "--date", "09/03/2020")
	assert.Error(t, err)
}

const importOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20200930120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20200901120000[0:GMT]
<DTEND>20200930120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20200915120000[0:GMT]
<TRNAMT>-25.50
<FITID>2020091501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20200920120000[0:GMT]
<TRNAMT>1500.00
<FITID>2020092001
<NAME>ACME PAYROLL
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20200930120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestImportOFX(t *testing.T) {
	dbPath := useTestLedger(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checking.ofx"), []byte(importOFX), 0600))
	// The same statement downloaded twice only imports once.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checking-again.qfx"), []byte(importOFX), 0600))

	out := mustExecute(t, importOFXCmd(), "--dry-run", dir)
	assert.Contains(t, out, "2 transactions from 1 accounts (2 duplicates, 0 rejected)")
	assert.Contains(t, out, "Nothing written.")

	out = mustExecute(t, importOFXCmd(), dir)
	assert.Contains(t, out, "Imported 2 transactions, 2 new payees")

	out = mustExecute(t, transactionsCmd(), "list", "--unassigned")
	assert.Contains(t, out, "ACME PAYROLL")
	assert.Contains(t, out, "2 transactions, total 1474.50")

	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	manager, err := store.NewCheckpointManager()
	require.NoError(t, err)
	checkpoints, err := manager.List(context.Background())
	require.NoError(t, err)
	require.Len(t, checkpoints, 1)
	assert.True(t, checkpoints[0].IsAuto)
}

func TestCheckpointCommands(t *testing.T) {
	useTestLedger(t)
	seedBudget(t)

	out := mustExecute(t, checkpointCmd(), "create", "--tag", "before-reorg", "--description", "pre cleanup")
	assert.Contains(t, out, "Created checkpoint before-reorg")
	assert.Contains(t, out, "Description: pre cleanup")

	_, err := execute(t, checkpointCmd(), "", "create", "--tag", "before-reorg")
	assert.ErrorIs(t, err, storage.ErrCheckpointExists)

	out = mustExecute(t, checkpointCmd(), "list")
	assert.Contains(t, out, "before-reorg")
	assert.Contains(t, out, "manual")

	out = mustExecute(t, checkpointCmd(), "delete", "before-reorg")
	assert.Contains(t, out, "Deleted checkpoint before-reorg")

	out = mustExecute(t, checkpointCmd(), "list")
	assert.Contains(t, out, "No checkpoints found.")
}

func TestMigrateStatus(t *testing.T) {
	useTestLedger(t)

	out := mustExecute(t, migrateCmd(), "--status")
	assert.Contains(t, out, "Schema")
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "Current version: 0")
	assert.Contains(t, out, "migration(s) pending")

	out = mustExecute(t, migrateCmd())
	assert.Contains(t, out, "Database is at schema version")

	out = mustExecute(t, migrateCmd(), "--status")
	assert.NotContains(t, out, "pending")
}
