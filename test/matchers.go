/*
 * Copyright (C) 2025 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package test

import (
	"fmt"
	"strings"

	"go.uber.org/mock/gomock"
)

// Contains returns a gomock matcher that matches arguments whose string form contains the needle.
func Contains(needle string) gomock.Matcher {
	return &containsMatcher{needle: needle}
}

type containsMatcher struct {
	needle string
}

func (c containsMatcher) Matches(x interface{}) bool {
	return strings.Contains(fmt.Sprintf("%s", x), c.needle)
}

func (c containsMatcher) String() string {
	return "contains string: " + c.needle
}
