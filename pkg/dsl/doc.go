/*
Package dsl provides a fluent Go builder for pushdown automata.

It is the programmatic alternative to rule text: states and moves are declared with
type-checked calls, in the order they should be tried.

Example usage:

	b := dsl.New()

	b.State("q0").
		On("a", "Z0").To("q0", "A", "Z0").
		On("a", "A").To("q0", "A", "A").
		On("b", "A").To("q1")

	b.State("q1").
		On("b", "A").To("q1").
		Epsilon("Z0").To("f", "Z0")

	b.Final("f")

	def, err := b.Build()
	// ... pass def to simulation.Fixed(def, "aabb")
*/
package dsl
