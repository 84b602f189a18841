// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package data

func Add(a, b int) int {
	if a > 0 && b > 0 {
		return a + b
	}
	return a + b
}

func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
