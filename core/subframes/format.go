/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package subframes

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultLimit is the number of sub-frames String renders.
const DefaultLimit = 16

// Format renders the first limit sub-frames, each showing its first and
// last two rows.
func (sf *SubFrames) Format(limit int) string {
	limit = max(limit, 0)
	n := sf.Size()
	sizes := sf.Sizes()

	shown := make([]string, 0, min(n, limit)+1)
	for _, s := range sizes[:min(n, limit)] {
		shown = append(shown, strconv.Itoa(s))
	}
	if n > limit {
		shown = append(shown, "...")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SubFrames: %d %s [%s] in %s.\n", n, plural(n, "frame"), strings.Join(shown, ", "), plural(n, "size"))
	fmt.Fprintf(&sb, "baseframe: %s\n", sf.Baseframe().Shape())
	for i, f := range sf.Frames()[:min(n, limit)] {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "[%d] ", i)
		sb.WriteString(f.Format(2, 2))
	}
	if n > limit {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "+ %d more %s.\n", n-limit, plural(n-limit, "frame"))
	}
	return sb.String()
}

func (sf *SubFrames) String() string {
	return sf.Format(DefaultLimit)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
