// Package query executes parsed statements against the storage layer. The
// executor is an early stub: it dispatches the handful of statements the
// parser produces and rejects everything else.
package query

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/starsql/starsql/internal/engine"
	"github.com/starsql/starsql/internal/meta"
	"github.com/starsql/starsql/internal/parse"
	"github.com/starsql/starsql/internal/sqltype"
)

// Errors surfaced by the executor.
var (
	ErrNoDatabase     = errors.New("no database selected")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrNotImplemented = errors.New("statement not implemented")
)

// Result is what a statement evaluates to: a message for data definition
// statements, a row set for selects.
type Result struct {
	Message string
	Rows    *engine.Rows
}

// Executor runs statements against databases below a base directory. One
// executor serves one connection; the selected database is part of its
// state.
type Executor struct {
	baseDir string
	db      *meta.Database
}

// NewExecutor creates an executor storing databases under baseDir.
func NewExecutor(baseDir string) *Executor {
	return &Executor{baseDir: baseDir}
}

// Run parses and executes a query string.
func (e *Executor) Run(input string) (*Result, error) {
	q, err := parse.Parse(input)
	if err != nil {
		return nil, err
	}
	return e.Execute(q)
}

// Execute dispatches one parsed statement.
func (e *Executor) Execute(q parse.Query) (*Result, error) {
	switch stmt := q.(type) {
	case parse.CreateDatabaseStmt:
		db, err := meta.CreateDatabase(filepath.Join(e.baseDir, stmt.Name))
		if err != nil {
			return nil, err
		}
		e.db = db
		return &Result{Message: fmt.Sprintf("database %q created", stmt.Name)}, nil

	case parse.UseStmt:
		db, err := meta.LoadDatabase(filepath.Join(e.baseDir, stmt.Database))
		if err != nil {
			return nil, err
		}
		e.db = db
		return &Result{Message: fmt.Sprintf("using database %q", stmt.Database)}, nil

	case parse.CreateTableStmt:
		return e.createTable(stmt)

	case parse.DropTableStmt:
		table, err := e.table(stmt.Table)
		if err != nil {
			return nil, err
		}
		if err := table.Delete(); err != nil {
			return nil, err
		}
		return &Result{Message: fmt.Sprintf("table %q dropped", stmt.Table)}, nil

	case parse.DescribeStmt:
		table, err := e.table(stmt.Table)
		if err != nil {
			return nil, err
		}
		msg := ""
		for _, c := range table.Columns() {
			msg += fmt.Sprintf("%s %s\n", c.Name, c.Type)
		}
		return &Result{Message: msg}, nil

	case parse.InsertStmt:
		return e.insert(stmt)

	case parse.SelectStmt:
		return e.selectRows(stmt)

	default:
		glog.Warningf("executor: unhandled statement %T", q)
		return nil, ErrNotImplemented
	}
}

func (e *Executor) table(name string) (*meta.Table, error) {
	if e.db == nil {
		return nil, ErrNoDatabase
	}
	return e.db.LoadTable(name)
}

func (e *Executor) createTable(stmt parse.CreateTableStmt) (*Result, error) {
	if e.db == nil {
		return nil, ErrNoDatabase
	}

	columns := make([]sqltype.Column, 0, len(stmt.Cols))
	for _, c := range stmt.Cols {
		columns = append(columns, sqltype.NewColumn(c.Name, c.Type, !c.NotNull, "", c.PrimaryKey))
	}
	table, err := e.db.CreateTable(stmt.Table, columns, meta.FlatFileID)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(table)
	if err != nil {
		return nil, err
	}
	defer eng.Close()
	if err := eng.CreateTable(); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("table %q created", stmt.Table)}, nil
}

func (e *Executor) insert(stmt parse.InsertStmt) (*Result, error) {
	table, err := e.table(stmt.Table)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(table)
	if err != nil {
		return nil, err
	}
	defer eng.Close()

	offset, err := eng.InsertRow(stmt.Values)
	if err != nil {
		return nil, err
	}
	glog.Infof("inserted row into %q at offset %d", stmt.Table, offset)
	return &Result{Message: "1 row inserted"}, nil
}

func (e *Executor) selectRows(stmt parse.SelectStmt) (*Result, error) {
	table, err := e.table(stmt.Table)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(table)
	if err != nil {
		return nil, err
	}
	defer eng.Close()

	if stmt.Cond == nil {
		rows, err := eng.FullScan()
		if err != nil {
			return nil, err
		}
		return &Result{Rows: rows}, nil
	}

	colIndex := -1
	for i, c := range table.Columns() {
		if c.Name == stmt.Cond.Col {
			colIndex = i
			break
		}
	}
	if colIndex == -1 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, stmt.Cond.Col)
	}

	rows, err := eng.Lookup(colIndex, stmt.Cond.Value, stmt.Cond.Op)
	if err != nil {
		return nil, err
	}
	return &Result{Rows: rows}, nil
}
