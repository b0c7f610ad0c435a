//go:build setassoc_debug

package setassoc

const debugging = true

func assert(cond bool, message string) {
	if !cond {
		panic(message)
	}
}
