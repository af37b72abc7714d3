package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/starsql/starsql/internal/sqltype"
)

// Errors surfaced by the parser.
var (
	ErrEmptyQuery       = errors.New("empty query")
	ErrUnknownStatement = errors.New("unknown statement")
)

// Parse turns a query string into a syntax tree. Coverage is limited to the
// statements the executor dispatches; anything else yields
// ErrUnknownStatement.
func Parse(input string) (Query, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	// A trailing semicolon is permitted and ignored.
	if n := len(tokens); n > 0 && tokens[n-1].Kind == TokSemicolon {
		tokens = tokens[:n-1]
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyQuery
	}

	p := &parser{tokens: tokens}
	switch {
	case tokens[0].keyword("create"):
		return p.parseCreate()
	case tokens[0].keyword("drop"):
		return p.parseDrop()
	case tokens[0].keyword("use"):
		return p.parseUse()
	case tokens[0].keyword("describe"):
		return p.parseDescribe()
	case tokens[0].keyword("insert"):
		return p.parseInsert()
	case tokens[0].keyword("select"):
		return p.parseSelect()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatement, tokens[0].Text)
	}
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) next() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	t := p.tokens[p.pos]
	p.pos++
	return t, true
}

func (p *parser) expectKeyword(kw string) error {
	t, ok := p.next()
	if !ok || !t.keyword(kw) {
		return fmt.Errorf("expected %q near position %d", kw, p.pos)
	}
	return nil
}

func (p *parser) expectKind(k TokenKind, what string) (Token, error) {
	t, ok := p.next()
	if !ok || t.Kind != k {
		return Token{}, fmt.Errorf("expected %s near position %d", what, p.pos)
	}
	return t, nil
}

func (p *parser) expectEnd() error {
	if p.pos != len(p.tokens) {
		return fmt.Errorf("trailing input after statement: %q", p.tokens[p.pos].Text)
	}
	return nil
}

func (p *parser) parseCreate() (Query, error) {
	p.pos = 1
	t, ok := p.next()
	switch {
	case ok && t.keyword("database"):
		name, err := p.expectKind(TokWord, "database name")
		if err != nil {
			return nil, err
		}
		return CreateDatabaseStmt{Name: name.Text}, p.expectEnd()

	case ok && t.keyword("table"):
		name, err := p.expectKind(TokWord, "table name")
		if err != nil {
			return nil, err
		}
		cols, err := p.parseColumnDefs()
		if err != nil {
			return nil, err
		}
		return CreateTableStmt{Table: name.Text, Cols: cols}, p.expectEnd()

	default:
		return nil, fmt.Errorf("%w: create %s", ErrUnknownStatement, t.Text)
	}
}

func (p *parser) parseColumnDefs() ([]ColumnInfo, error) {
	if _, err := p.expectKind(TokParenOpen, "column list"); err != nil {
		return nil, err
	}

	var cols []ColumnInfo
	for {
		name, err := p.expectKind(TokWord, "column name")
		if err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		col := ColumnInfo{Name: name.Text, Type: typ}

		// Optional column attributes until , or ).
	attrs:
		for {
			t, ok := p.next()
			switch {
			case !ok:
				return nil, errors.New("unterminated column list")
			case t.Kind == TokComma:
				break attrs
			case t.Kind == TokParenClose:
				cols = append(cols, col)
				return cols, nil
			case t.keyword("primary"):
				if err := p.expectKeyword("key"); err != nil {
					return nil, err
				}
				col.PrimaryKey = true
			case t.keyword("not"):
				if err := p.expectKeyword("null"); err != nil {
					return nil, err
				}
				col.NotNull = true
			default:
				return nil, fmt.Errorf("unexpected token %q in column definition", t.Text)
			}
		}
		cols = append(cols, col)
	}
}

func (p *parser) parseType() (sqltype.SqlType, error) {
	t, err := p.expectKind(TokWord, "column type")
	if err != nil {
		return sqltype.SqlType{}, err
	}
	switch strings.ToLower(t.Text) {
	case "int":
		return sqltype.IntType(), nil
	case "bool":
		return sqltype.BoolType(), nil
	case "char":
		n, err := p.parseTypeLen()
		if err != nil {
			return sqltype.SqlType{}, err
		}
		if n > 255 {
			return sqltype.SqlType{}, fmt.Errorf("char length %d out of range", n)
		}
		return sqltype.CharType(uint8(n)), nil
	case "varchar":
		n, err := p.parseTypeLen()
		if err != nil {
			return sqltype.SqlType{}, err
		}
		return sqltype.VarCharType(uint16(n)), nil
	default:
		return sqltype.SqlType{}, fmt.Errorf("unknown column type %q", t.Text)
	}
}

func (p *parser) parseTypeLen() (uint64, error) {
	if _, err := p.expectKind(TokParenOpen, "type length"); err != nil {
		return 0, err
	}
	num, err := p.expectKind(TokNum, "type length")
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(num.Text, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("bad type length %q", num.Text)
	}
	if _, err := p.expectKind(TokParenClose, "closing parenthesis"); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *parser) parseDrop() (Query, error) {
	p.pos = 1
	if err := p.expectKeyword("table"); err != nil {
		return nil, err
	}
	name, err := p.expectKind(TokWord, "table name")
	if err != nil {
		return nil, err
	}
	return DropTableStmt{Table: name.Text}, p.expectEnd()
}

func (p *parser) parseUse() (Query, error) {
	p.pos = 1
	// USE [DATABASE] <name>
	if p.pos < len(p.tokens) && p.tokens[p.pos].keyword("database") {
		p.pos++
	}
	name, err := p.expectKind(TokWord, "database name")
	if err != nil {
		return nil, err
	}
	return UseStmt{Database: name.Text}, p.expectEnd()
}

func (p *parser) parseDescribe() (Query, error) {
	p.pos = 1
	name, err := p.expectKind(TokWord, "table name")
	if err != nil {
		return nil, err
	}
	return DescribeStmt{Table: name.Text}, p.expectEnd()
}

func (p *parser) parseInsert() (Query, error) {
	p.pos = 1
	if err := p.expectKeyword("into"); err != nil {
		return nil, err
	}
	name, err := p.expectKind(TokWord, "table name")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("values"); err != nil {
		return nil, err
	}
	if _, err := p.expectKind(TokParenOpen, "value list"); err != nil {
		return nil, err
	}

	var values []sqltype.Value
	for {
		v, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		t, ok := p.next()
		switch {
		case !ok:
			return nil, errors.New("unterminated value list")
		case t.Kind == TokParenClose:
			return InsertStmt{Table: name.Text, Values: values}, p.expectEnd()
		case t.Kind == TokComma:
		default:
			return nil, fmt.Errorf("unexpected token %q in value list", t.Text)
		}
	}
}

func (p *parser) parseLiteral() (sqltype.Value, error) {
	t, ok := p.next()
	if !ok {
		return sqltype.Value{}, errors.New("expected literal")
	}
	switch {
	case t.Kind == TokNum:
		n, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			return sqltype.Value{}, fmt.Errorf("bad number %q", t.Text)
		}
		return sqltype.IntValue(n), nil
	case t.Kind == TokString:
		return sqltype.StringValue(t.Text), nil
	case t.keyword("true"):
		return sqltype.BoolValue(true), nil
	case t.keyword("false"):
		return sqltype.BoolValue(false), nil
	default:
		return sqltype.Value{}, fmt.Errorf("expected literal, got %q", t.Text)
	}
}

func (p *parser) parseSelect() (Query, error) {
	p.pos = 1
	// Only SELECT * is understood so far.
	if _, err := p.expectKind(TokStar, "column selection"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	name, err := p.expectKind(TokWord, "table name")
	if err != nil {
		return nil, err
	}

	stmt := SelectStmt{Table: name.Text}
	if p.pos == len(p.tokens) {
		return stmt, nil
	}

	if err := p.expectKeyword("where"); err != nil {
		return nil, err
	}
	col, err := p.expectKind(TokWord, "column name")
	if err != nil {
		return nil, err
	}
	opTok, err := p.expectKind(TokOperator, "comparison operator")
	if err != nil {
		return nil, err
	}
	op, err := compOp(opTok.Text)
	if err != nil {
		return nil, err
	}
	val, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	stmt.Cond = &Condition{Col: col.Text, Op: op, Value: val}
	return stmt, p.expectEnd()
}

func compOp(text string) (sqltype.CompOp, error) {
	switch text {
	case "=", "==":
		return sqltype.CompEqual, nil
	case "!=":
		return sqltype.CompNotEqual, nil
	case "<":
		return sqltype.CompLess, nil
	case "<=":
		return sqltype.CompLessEqual, nil
	case ">":
		return sqltype.CompGreater, nil
	case ">=":
		return sqltype.CompGreaterEqual, nil
	default:
		return 0, fmt.Errorf("unknown comparison operator %q", text)
	}
}
