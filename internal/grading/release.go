//go:build !gradingdebug

package grading

func precondition(string) {}
