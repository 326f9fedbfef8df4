// Package astio moves compilation units across the front-end boundary.
//
// The front end is a separate program; it hands the backend a
// msgpack-encoded unit holding the interned string table, the statement
// tree, and the resolved type tables. Decode rebuilds the in-memory
// Interner, Program, and TypeEnv with the same Symbol numbering the
// encoder saw. Missing type entries decode to the explicit Unknown type.
package astio

import (
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

// FormatVersion is the wire format revision. Decode rejects units written
// by a newer encoder.
const FormatVersion = 1

// Unit is a decoded compilation unit: one program plus the tables every
// backend pass reads. The Unit owns its Interner and TypeEnv.
type Unit struct {
	Name string
	In   *intern.Interner
	Prog *ast.Program
	Env  *types.TypeEnv
}

// Encode serializes a unit. The interner's insertion order is preserved so
// that Decode reproduces identical Symbol values.
func Encode(u *Unit) ([]byte, error) {
	if u == nil || u.Prog == nil {
		return nil, fmt.Errorf("astio: encode: nil unit")
	}
	w := &wireUnit{
		Version: FormatVersion,
		Name:    u.Name,
		Strings: u.In.Names(),
	}
	for _, s := range u.Prog.Stmts {
		w.Stmts = append(w.Stmts, encodeStmt(s))
	}
	if u.Env != nil {
		for sym, t := range u.Env.Vars() {
			w.Vars = append(w.Vars, wireVar{Sym: uint32(sym), Type: encodeType(t)})
		}
		for name, sig := range u.Env.Funcs() {
			wf := wireFunc{Name: uint32(name), Return: encodeType(sig.Return)}
			for _, p := range sig.Params {
				wf.Params = append(wf.Params, encodeType(p))
			}
			w.Funcs = append(w.Funcs, wf)
		}
		for _, rec := range u.Env.Records() {
			wr := wireRecord{Name: uint32(rec.Name)}
			for _, f := range rec.Fields {
				wr.Fields = append(wr.Fields, wireField{Name: uint32(f.Name), Type: encodeType(f.Type)})
			}
			w.Records = append(w.Records, wr)
		}
		// Map iteration order leaks into the byte stream otherwise.
		sort.Slice(w.Vars, func(i, j int) bool { return w.Vars[i].Sym < w.Vars[j].Sym })
		sort.Slice(w.Funcs, func(i, j int) bool { return w.Funcs[i].Name < w.Funcs[j].Name })
		sort.Slice(w.Records, func(i, j int) bool { return w.Records[i].Name < w.Records[j].Name })
	}
	return msgpack.Marshal(w)
}

// Decode deserializes a unit produced by Encode or by the front end.
func Decode(data []byte) (*Unit, error) {
	var w wireUnit
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("astio: decode: %w", err)
	}
	if w.Version > FormatVersion {
		return nil, fmt.Errorf("astio: decode: unit format v%d is newer than supported v%d", w.Version, FormatVersion)
	}

	in := intern.NewInterner()
	for i, s := range w.Strings {
		// An empty name would collapse into None and shift every
		// later symbol off by one.
		if s == "" {
			return nil, fmt.Errorf("astio: decode: empty name at string table slot %d", i+1)
		}
		in.Intern(s)
	}

	d := &decoder{strings: len(w.Strings)}
	prog := &ast.Program{}
	for _, ws := range w.Stmts {
		s, err := d.stmt(ws)
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, s)
	}

	env := types.NewEnv()
	for _, v := range w.Vars {
		env.Register(intern.Symbol(v.Sym), decodeType(v.Type))
	}
	for _, f := range w.Funcs {
		sig := types.FuncSig{Return: decodeType(f.Return)}
		for _, p := range f.Params {
			sig.Params = append(sig.Params, decodeType(p))
		}
		env.RegisterFunc(intern.Symbol(f.Name), sig)
	}
	for _, r := range w.Records {
		rec := &types.Record{Name: intern.Symbol(r.Name)}
		for _, f := range r.Fields {
			rec.Fields = append(rec.Fields, types.Field{
				Name: intern.Symbol(f.Name),
				Type: decodeType(f.Type),
			})
		}
		env.RegisterRecord(rec)
	}

	return &Unit{Name: w.Name, In: in, Prog: prog, Env: env}, nil
}

type decoder struct {
	strings int
}

func (d *decoder) sym(raw uint32) (intern.Symbol, error) {
	// Slot 0 is the reserved None symbol.
	if int(raw) > d.strings {
		return intern.None, fmt.Errorf("astio: decode: symbol %d outside string table", raw)
	}
	return intern.Symbol(raw), nil
}
