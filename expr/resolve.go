package expr

import "github.com/brepkit/kernel/sketch"

// Resolve evaluates every string-form point coordinate and constraint value
// in doc against env, in place. A field whose evaluation fails is left
// unchanged; a successful finite evaluation replaces it with a number.
//
// A Constraint's ValueExpression takes precedence over Value when both are
// present.
func Resolve(doc *sketch.Document, env *Env) {
	for _, p := range doc.Points {
		if p.X.IsExpr() {
			if v, err := evalField(p.X.Expression(), env); err == nil {
				p.X = sketch.Num(v)
			}
		}
		if p.Y.IsExpr() {
			if v, err := evalField(p.Y.Expression(), env); err == nil {
				p.Y = sketch.Num(v)
			}
		}
	}
	for _, c := range doc.Constraints {
		if c.ValueExpression != nil {
			if v, err := evalField(*c.ValueExpression, env); err == nil {
				resolved := sketch.Num(v)
				c.Value = &resolved
			}
			continue
		}
		if c.Value != nil && c.Value.IsExpr() {
			if v, err := evalField(c.Value.Expression(), env); err == nil {
				resolved := sketch.Num(v)
				c.Value = &resolved
			}
		}
	}
}

// evalField evaluates a single expression fragment within env's scope: its
// assignments are reused, but the final expression is replaced by field.
func evalField(field string, env *Env) (float64, error) {
	sub := &Env{assignments: env.assignments, final: field}
	return sub.Eval()
}
