package compiler

import "github.com/mark3labs/swagger2client/internal/model"

// Return-type unification: reduce the per-response candidate types to the
// most specific type common to all of them, degrading to the generic object
// type when responses are unrelated.

// unifyReturnType walks each candidate's ancestor chain and pops the chains
// in lock-step from the generic-object ceiling downwards, keeping the last
// level on which all chains still agree structurally.
func (c *Context) unifyReturnType(candidates []model.ModelType) model.ModelType {
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	}
	stacks := make([][]model.ModelType, len(candidates))
	for i, t := range candidates {
		stacks[i] = c.ancestorChain(t)
	}
	var best model.ModelType
	for {
		var top model.ModelType
		agree := true
		for i := range stacks {
			if len(stacks[i]) == 0 {
				agree = false
				break
			}
			x := stacks[i][len(stacks[i])-1]
			if top == nil {
				top = x
			} else if !model.Equal(top, x) {
				agree = false
				break
			}
		}
		if !agree {
			break
		}
		for i := range stacks {
			stacks[i] = stacks[i][:len(stacks[i])-1]
		}
		best = top
	}
	if best == nil {
		return model.Object()
	}
	return best
}

// ancestorChain returns [t, base, base-of-base, ..., object]. The generic
// object type is always the ceiling, even for types with no declared base.
func (c *Context) ancestorChain(t model.ModelType) []model.ModelType {
	chain := []model.ModelType{t}
	comp, ok := t.(*model.Composite)
	for ok {
		baseName, has := c.registry.BaseTypeOf(comp.Name)
		if !has {
			break
		}
		base, found := c.registry.Lookup(baseName)
		if !found {
			break
		}
		chain = append(chain, base)
		comp, ok = base.(*model.Composite)
	}
	top := chain[len(chain)-1]
	if prim, isPrim := top.(*model.Primitive); !isPrim || prim.Kind != model.KindObject {
		chain = append(chain, model.Object())
	}
	return chain
}
