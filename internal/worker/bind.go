// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

// Bind1 fixes the argument of a payload taking one value after yield.
func Bind1[A, T any](fn func(YieldFunc, A) (T, error), a A) Func[T] {
	return func(yield YieldFunc) (T, error) {
		return fn(yield, a)
	}
}

// Bind2 fixes the arguments of a payload taking two values after yield.
func Bind2[A, B, T any](fn func(YieldFunc, A, B) (T, error), a A, b B) Func[T] {
	return func(yield YieldFunc) (T, error) {
		return fn(yield, a, b)
	}
}

// Bind3 fixes the arguments of a payload taking three values after yield.
func Bind3[A, B, C, T any](fn func(YieldFunc, A, B, C) (T, error), a A, b B, c C) Func[T] {
	return func(yield YieldFunc) (T, error) {
		return fn(yield, a, b, c)
	}
}
