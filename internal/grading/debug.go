//go:build gradingdebug

package grading

func precondition(msg string) {
	panic("grading: " + msg)
}
