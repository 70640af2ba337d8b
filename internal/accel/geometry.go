// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package accel

// MaxGroups bounds oversubscription: launch geometries are clamped so no
// more than this many workgroups are ever requested (spec.md §4.3).
const MaxGroups = 1024

// LaunchGeometry returns the number of workgroups and the per-group
// thread count for processing n items with a preferred workgroup size w,
// clamped above by MaxGroups.
func LaunchGeometry(n, w int) (groups, threadsPerGroup int) {
	if w <= 0 {
		w = 1
	}
	if n <= 0 {
		return 0, w
	}
	groups = (n + w - 1) / w
	if groups > MaxGroups {
		groups = MaxGroups
	}
	return groups, w
}
