package astio

import (
	"fmt"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

// The wire tree is a tagged union: one node shape per grammar class, with
// a kind discriminator and only the slots that kind uses populated. The
// slot assignment per kind is part of the format and must not be
// rearranged without bumping FormatVersion.

type wireUnit struct {
	Version int          `msgpack:"v"`
	Name    string       `msgpack:"name"`
	Strings []string     `msgpack:"strings"`
	Stmts   []*wireStmt  `msgpack:"stmts"`
	Vars    []wireVar    `msgpack:"vars,omitempty"`
	Funcs   []wireFunc   `msgpack:"funcs,omitempty"`
	Records []wireRecord `msgpack:"records,omitempty"`
}

type wireVar struct {
	Sym  uint32    `msgpack:"sym"`
	Type *wireType `msgpack:"type"`
}

type wireFunc struct {
	Name   uint32      `msgpack:"name"`
	Params []*wireType `msgpack:"params,omitempty"`
	Return *wireType   `msgpack:"ret,omitempty"`
}

type wireRecord struct {
	Name   uint32      `msgpack:"name"`
	Fields []wireField `msgpack:"fields,omitempty"`
}

type wireField struct {
	Name uint32    `msgpack:"name"`
	Type *wireType `msgpack:"type"`
}

type wireType struct {
	Kind   int         `msgpack:"k"`
	Elem   *wireType   `msgpack:"elem,omitempty"`
	Key    *wireType   `msgpack:"key,omitempty"`
	Name   uint32      `msgpack:"name,omitempty"`
	Params []*wireType `msgpack:"params,omitempty"`
	Return *wireType   `msgpack:"ret,omitempty"`
}

type wirePred struct {
	Bound uint32    `msgpack:"bound"`
	Cond  *wireExpr `msgpack:"cond"`
}

type wireStmt struct {
	Kind     string      `msgpack:"k"`
	Sym      uint32      `msgpack:"sym,omitempty"`
	A        *wireExpr   `msgpack:"a,omitempty"`
	B        *wireExpr   `msgpack:"b,omitempty"`
	C        *wireExpr   `msgpack:"c,omitempty"`
	Args     []*wireExpr `msgpack:"args,omitempty"`
	Body     []*wireStmt `msgpack:"body,omitempty"`
	Else     []*wireStmt `msgpack:"else,omitempty"`
	Syms     []uint32    `msgpack:"syms,omitempty"`
	Mutable  bool        `msgpack:"mut,omitempty"`
	Native   bool        `msgpack:"native,omitempty"`
	Exported bool        `msgpack:"exported,omitempty"`
	Target   string      `msgpack:"target,omitempty"`
	Pred     *wirePred   `msgpack:"pred,omitempty"`
}

type wirePart struct {
	Text string    `msgpack:"text,omitempty"`
	X    *wireExpr `msgpack:"x,omitempty"`
}

type wireExpr struct {
	Kind  string      `msgpack:"k"`
	Int   int64       `msgpack:"int,omitempty"`
	Float float64     `msgpack:"float,omitempty"`
	Bool  bool        `msgpack:"bool,omitempty"`
	Text  string      `msgpack:"text,omitempty"`
	Sym   uint32      `msgpack:"sym,omitempty"`
	Op    int         `msgpack:"op,omitempty"`
	A     *wireExpr   `msgpack:"a,omitempty"`
	B     *wireExpr   `msgpack:"b,omitempty"`
	C     *wireExpr   `msgpack:"c,omitempty"`
	List  []*wireExpr `msgpack:"list,omitempty"`
	Parts []wirePart  `msgpack:"parts,omitempty"`
	Syms  []uint32    `msgpack:"syms,omitempty"`
	Body  []*wireStmt `msgpack:"body,omitempty"`
}

func encodeSyms(syms []intern.Symbol) []uint32 {
	out := make([]uint32, len(syms))
	for i, s := range syms {
		out[i] = uint32(s)
	}
	return out
}

func encodeBlock(stmts []ast.Stmt) []*wireStmt {
	if len(stmts) == 0 {
		return nil
	}
	out := make([]*wireStmt, len(stmts))
	for i, s := range stmts {
		out[i] = encodeStmt(s)
	}
	return out
}

func encodeExprs(exprs []ast.Expr) []*wireExpr {
	if len(exprs) == 0 {
		return nil
	}
	out := make([]*wireExpr, len(exprs))
	for i, e := range exprs {
		out[i] = encodeExpr(e)
	}
	return out
}

func encodeStmt(s ast.Stmt) *wireStmt {
	switch st := s.(type) {
	case *ast.LetStmt:
		w := &wireStmt{Kind: "let", Sym: uint32(st.Var), A: encodeExpr(st.Value), Mutable: st.Mutable}
		if st.Predicate != nil {
			w.Pred = &wirePred{Bound: uint32(st.Predicate.Bound), Cond: encodeExpr(st.Predicate.Cond)}
		}
		return w
	case *ast.SetStmt:
		return &wireStmt{Kind: "set", Sym: uint32(st.Target), A: encodeExpr(st.Value)}
	case *ast.GiveStmt:
		return &wireStmt{Kind: "give", Sym: uint32(st.Recipient), A: encodeExpr(st.Object)}
	case *ast.ShowStmt:
		return &wireStmt{Kind: "show", A: encodeExpr(st.Object)}
	case *ast.IfStmt:
		return &wireStmt{Kind: "if", A: encodeExpr(st.Cond), Body: encodeBlock(st.Then), Else: encodeBlock(st.Else)}
	case *ast.WhileStmt:
		return &wireStmt{Kind: "while", A: encodeExpr(st.Cond), Body: encodeBlock(st.Body)}
	case *ast.RepeatStmt:
		return &wireStmt{Kind: "repeat", Syms: encodeSyms(st.Pattern), A: encodeExpr(st.Iterable), Body: encodeBlock(st.Body)}
	case *ast.ReturnStmt:
		w := &wireStmt{Kind: "return"}
		if st.Value != nil {
			w.A = encodeExpr(st.Value)
		}
		return w
	case *ast.CallStmt:
		return &wireStmt{Kind: "call", Sym: uint32(st.Function), Args: encodeExprs(st.Args)}
	case *ast.PushStmt:
		return &wireStmt{Kind: "push", A: encodeExpr(st.Value), B: encodeExpr(st.Collection)}
	case *ast.PopStmt:
		return &wireStmt{Kind: "pop", Sym: uint32(st.Into), A: encodeExpr(st.Collection)}
	case *ast.AddStmt:
		return &wireStmt{Kind: "add", A: encodeExpr(st.Value), B: encodeExpr(st.Collection)}
	case *ast.RemoveStmt:
		return &wireStmt{Kind: "remove", A: encodeExpr(st.Value), B: encodeExpr(st.Collection)}
	case *ast.SetIndexStmt:
		return &wireStmt{Kind: "setindex", A: encodeExpr(st.Collection), B: encodeExpr(st.Index), C: encodeExpr(st.Value)}
	case *ast.SetFieldStmt:
		return &wireStmt{Kind: "setfield", Sym: uint32(st.Field), A: encodeExpr(st.Object), B: encodeExpr(st.Value)}
	case *ast.FunctionDef:
		return &wireStmt{
			Kind:     "func",
			Sym:      uint32(st.Name),
			Syms:     encodeSyms(st.Params),
			Body:     encodeBlock(st.Body),
			Native:   st.IsNative,
			Exported: st.IsExported,
			Target:   st.ExportTarget,
		}
	case *ast.ZoneStmt:
		return &wireStmt{Kind: "zone", Sym: uint32(st.Name), Body: encodeBlock(st.Body)}
	case *ast.SleepStmt:
		return &wireStmt{Kind: "sleep", A: encodeExpr(st.Millis)}
	case *ast.MountStmt:
		return &wireStmt{Kind: "mount", Sym: uint32(st.Var), A: encodeExpr(st.Path)}
	case *ast.SyncStmt:
		return &wireStmt{Kind: "sync", Sym: uint32(st.Var), A: encodeExpr(st.Topic)}
	case *ast.CheckStmt:
		return &wireStmt{Kind: "check", Sym: uint32(st.Capability), A: encodeExpr(st.Subject), B: encodeExpr(st.Object)}
	default:
		return &wireStmt{Kind: "unknown"}
	}
}

func encodeExpr(e ast.Expr) *wireExpr {
	switch x := e.(type) {
	case nil:
		return nil
	case *ast.IntLit:
		return &wireExpr{Kind: "int", Int: x.Value}
	case *ast.FloatLit:
		return &wireExpr{Kind: "float", Float: x.Value}
	case *ast.BoolLit:
		return &wireExpr{Kind: "bool", Bool: x.Value}
	case *ast.TextLit:
		return &wireExpr{Kind: "text", Text: x.Value}
	case *ast.NothingLit:
		return &wireExpr{Kind: "nothing"}
	case *ast.Ident:
		return &wireExpr{Kind: "ident", Sym: uint32(x.Sym)}
	case *ast.Binary:
		return &wireExpr{Kind: "binary", Op: int(x.Op), A: encodeExpr(x.Left), B: encodeExpr(x.Right)}
	case *ast.NotExpr:
		return &wireExpr{Kind: "not", A: encodeExpr(x.Operand)}
	case *ast.CallExpr:
		return &wireExpr{Kind: "call", Sym: uint32(x.Function), List: encodeExprs(x.Args)}
	case *ast.IndexExpr:
		return &wireExpr{Kind: "index", A: encodeExpr(x.Collection), B: encodeExpr(x.Index)}
	case *ast.SliceExpr:
		return &wireExpr{Kind: "slice", A: encodeExpr(x.Collection), B: encodeExpr(x.Start), C: encodeExpr(x.End)}
	case *ast.LengthExpr:
		return &wireExpr{Kind: "length", A: encodeExpr(x.Collection)}
	case *ast.ContainsExpr:
		return &wireExpr{Kind: "contains", A: encodeExpr(x.Collection), B: encodeExpr(x.Value)}
	case *ast.ListLit:
		return &wireExpr{Kind: "list", List: encodeExprs(x.Items)}
	case *ast.RangeExpr:
		return &wireExpr{Kind: "range", A: encodeExpr(x.Start), B: encodeExpr(x.End)}
	case *ast.CopyExpr:
		return &wireExpr{Kind: "copy", A: encodeExpr(x.X)}
	case *ast.FieldAccess:
		return &wireExpr{Kind: "field", Sym: uint32(x.Field), A: encodeExpr(x.Object)}
	case *ast.InterpText:
		w := &wireExpr{Kind: "interp"}
		for _, p := range x.Parts {
			w.Parts = append(w.Parts, wirePart{Text: p.Text, X: encodeExpr(p.X)})
		}
		return w
	case *ast.Closure:
		return &wireExpr{Kind: "closure", Syms: encodeSyms(x.Params), A: encodeExpr(x.ExprBody), Body: encodeBlock(x.BlockBody)}
	default:
		return &wireExpr{Kind: "nothing"}
	}
}

func encodeType(t *types.Type) *wireType {
	if t == nil {
		return nil
	}
	w := &wireType{Kind: int(t.Kind), Name: uint32(t.Name)}
	w.Elem = encodeType(t.Elem)
	w.Key = encodeType(t.Key)
	w.Return = encodeType(t.Return)
	for _, p := range t.Params {
		w.Params = append(w.Params, encodeType(p))
	}
	return w
}

// decodeType maps a missing or malformed type entry to Unknown rather
// than failing the whole unit.
func decodeType(w *wireType) *types.Type {
	if w == nil {
		return types.Unknown()
	}
	kind := types.Kind(w.Kind)
	switch kind {
	case types.KindUnit:
		return types.Unit()
	case types.KindInt:
		return types.Int()
	case types.KindFloat:
		return types.Float()
	case types.KindBool:
		return types.Bool()
	case types.KindText:
		return types.Text()
	case types.KindSeq:
		return types.Seq(decodeType(w.Elem))
	case types.KindSet:
		return types.Set(decodeType(w.Elem))
	case types.KindMap:
		return types.Map(decodeType(w.Key), decodeType(w.Elem))
	case types.KindNamed:
		return types.Named(intern.Symbol(w.Name))
	case types.KindFunc:
		params := make([]*types.Type, len(w.Params))
		for i, p := range w.Params {
			params[i] = decodeType(p)
		}
		return types.Func(params, decodeType(w.Return))
	default:
		return types.Unknown()
	}
}

func (d *decoder) symList(raw []uint32) ([]intern.Symbol, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]intern.Symbol, len(raw))
	for i, r := range raw {
		s, err := d.sym(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (d *decoder) block(raw []*wireStmt) ([]ast.Stmt, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]ast.Stmt, len(raw))
	for i, w := range raw {
		s, err := d.stmt(w)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (d *decoder) exprList(raw []*wireExpr) ([]ast.Expr, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]ast.Expr, len(raw))
	for i, w := range raw {
		e, err := d.expr(w)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (d *decoder) stmt(w *wireStmt) (ast.Stmt, error) {
	if w == nil {
		return nil, fmt.Errorf("astio: decode: nil statement node")
	}
	sym, err := d.sym(w.Sym)
	if err != nil {
		return nil, err
	}
	a, err := d.expr(w.A)
	if err != nil {
		return nil, err
	}
	b, err := d.expr(w.B)
	if err != nil {
		return nil, err
	}
	c, err := d.expr(w.C)
	if err != nil {
		return nil, err
	}
	body, err := d.block(w.Body)
	if err != nil {
		return nil, err
	}

	switch w.Kind {
	case "let":
		st := &ast.LetStmt{Var: sym, Value: a, Mutable: w.Mutable}
		if w.Pred != nil {
			bound, err := d.sym(w.Pred.Bound)
			if err != nil {
				return nil, err
			}
			cond, err := d.expr(w.Pred.Cond)
			if err != nil {
				return nil, err
			}
			st.Predicate = &ast.Predicate{Bound: bound, Cond: cond}
		}
		return st, nil
	case "set":
		return &ast.SetStmt{Target: sym, Value: a}, nil
	case "give":
		return &ast.GiveStmt{Object: a, Recipient: sym}, nil
	case "show":
		return &ast.ShowStmt{Object: a}, nil
	case "if":
		els, err := d.block(w.Else)
		if err != nil {
			return nil, err
		}
		return &ast.IfStmt{Cond: a, Then: body, Else: els}, nil
	case "while":
		return &ast.WhileStmt{Cond: a, Body: body}, nil
	case "repeat":
		pattern, err := d.symList(w.Syms)
		if err != nil {
			return nil, err
		}
		return &ast.RepeatStmt{Pattern: pattern, Iterable: a, Body: body}, nil
	case "return":
		return &ast.ReturnStmt{Value: a}, nil
	case "call":
		args, err := d.exprList(w.Args)
		if err != nil {
			return nil, err
		}
		return &ast.CallStmt{Function: sym, Args: args}, nil
	case "push":
		return &ast.PushStmt{Value: a, Collection: b}, nil
	case "pop":
		return &ast.PopStmt{Collection: a, Into: sym}, nil
	case "add":
		return &ast.AddStmt{Value: a, Collection: b}, nil
	case "remove":
		return &ast.RemoveStmt{Value: a, Collection: b}, nil
	case "setindex":
		return &ast.SetIndexStmt{Collection: a, Index: b, Value: c}, nil
	case "setfield":
		return &ast.SetFieldStmt{Object: a, Field: sym, Value: b}, nil
	case "func":
		params, err := d.symList(w.Syms)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionDef{
			Name:         sym,
			Params:       params,
			Body:         body,
			IsNative:     w.Native,
			IsExported:   w.Exported,
			ExportTarget: w.Target,
		}, nil
	case "zone":
		return &ast.ZoneStmt{Name: sym, Body: body}, nil
	case "sleep":
		return &ast.SleepStmt{Millis: a}, nil
	case "mount":
		return &ast.MountStmt{Var: sym, Path: a}, nil
	case "sync":
		return &ast.SyncStmt{Var: sym, Topic: a}, nil
	case "check":
		return &ast.CheckStmt{Subject: a, Capability: sym, Object: b}, nil
	default:
		return nil, fmt.Errorf("astio: decode: unknown statement kind %q", w.Kind)
	}
}

func (d *decoder) expr(w *wireExpr) (ast.Expr, error) {
	if w == nil {
		return nil, nil
	}
	sym, err := d.sym(w.Sym)
	if err != nil {
		return nil, err
	}
	a, err := d.expr(w.A)
	if err != nil {
		return nil, err
	}
	b, err := d.expr(w.B)
	if err != nil {
		return nil, err
	}
	c, err := d.expr(w.C)
	if err != nil {
		return nil, err
	}

	switch w.Kind {
	case "int":
		return &ast.IntLit{Value: w.Int}, nil
	case "float":
		return &ast.FloatLit{Value: w.Float}, nil
	case "bool":
		return &ast.BoolLit{Value: w.Bool}, nil
	case "text":
		return &ast.TextLit{Value: w.Text}, nil
	case "nothing":
		return &ast.NothingLit{}, nil
	case "ident":
		return &ast.Ident{Sym: sym}, nil
	case "binary":
		return &ast.Binary{Op: ast.BinOp(w.Op), Left: a, Right: b}, nil
	case "not":
		return &ast.NotExpr{Operand: a}, nil
	case "call":
		args, err := d.exprList(w.List)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Function: sym, Args: args}, nil
	case "index":
		return &ast.IndexExpr{Collection: a, Index: b}, nil
	case "slice":
		return &ast.SliceExpr{Collection: a, Start: b, End: c}, nil
	case "length":
		return &ast.LengthExpr{Collection: a}, nil
	case "contains":
		return &ast.ContainsExpr{Collection: a, Value: b}, nil
	case "list":
		items, err := d.exprList(w.List)
		if err != nil {
			return nil, err
		}
		return &ast.ListLit{Items: items}, nil
	case "range":
		return &ast.RangeExpr{Start: a, End: b}, nil
	case "copy":
		return &ast.CopyExpr{X: a}, nil
	case "field":
		return &ast.FieldAccess{Object: a, Field: sym}, nil
	case "interp":
		it := &ast.InterpText{}
		for _, p := range w.Parts {
			x, err := d.expr(p.X)
			if err != nil {
				return nil, err
			}
			it.Parts = append(it.Parts, ast.InterpPart{Text: p.Text, X: x})
		}
		return it, nil
	case "closure":
		params, err := d.symList(w.Syms)
		if err != nil {
			return nil, err
		}
		blockBody, err := d.block(w.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Closure{Params: params, ExprBody: a, BlockBody: blockBody}, nil
	default:
		return nil, fmt.Errorf("astio: decode: unknown expression kind %q", w.Kind)
	}
}
