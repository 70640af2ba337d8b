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

package gsla

// formatGraph is the static per-edge cost table the storage manager
// consults when more than one format is currently valid and a conversion
// is required (spec.md §4.2). Edges are directed; symmetric pairs are
// recorded twice when the true cost differs (e.g. host->device is usually
// cheaper to reason about than device->host, though this implementation
// keeps them equal).
type formatGraph struct {
	count int
	cost  map[[2]int]float64
}

func newFormatGraph(count int) *formatGraph {
	return &formatGraph{count: count, cost: make(map[[2]int]float64)}
}

func (g *formatGraph) addEdge(from, to int, cost float64) {
	g.cost[[2]int{from, to}] = cost
	g.cost[[2]int{to, from}] = cost
}

// cheapestSource picks, among the formats currently valid in `valid`, the
// one with the lowest-cost edge to target. Ties are broken in favor of
// the lowest format index, which need not be adjacent to target in the
// ring. The source stays valid per spec.md §4.2 (the source format is
// never mutated by a read-only conversion).
func (g *formatGraph) cheapestSource(valid bitmap, target int) (int, bool) {
	best := -1
	bestCost := 0.0
	for i := 0; i < g.count; i++ {
		if !valid.has(i) {
			continue
		}
		if i == target {
			return i, true
		}
		c, ok := g.cost[[2]int{i, target}]
		if !ok {
			continue
		}
		if best == -1 || c < bestCost {
			best = i
			bestCost = c
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// vectorGraph returns the CPU ring (DOK-Dense-COO, all pairwise adjacent —
// a 3-node ring collapses to a triangle) plus the two host<->device edges,
// one per CPU/Acc pair, per spec.md §4.2's "Acc variants are converted by
// host->device copy of the matching CPU layout" rule.
func vectorGraph() *formatGraph {
	g := newFormatGraph(int(vecFormatCount))
	g.addEdge(int(VCpuDok), int(VCpuDense), 1)
	g.addEdge(int(VCpuDense), int(VCpuCoo), 1)
	g.addEdge(int(VCpuCoo), int(VCpuDok), 1)
	g.addEdge(int(VCpuDense), int(VAccDense), 5)
	g.addEdge(int(VCpuCoo), int(VAccCoo), 5)
	return g
}

// matrixGraph returns the LIL<->DOK<->COO<->CSR<->CSC linear ring (direct
// edges only between adjacent nodes, multi-hop via intermediates for
// non-adjacent pairs) plus one host<->device edge per matching CPU/Acc
// pair.
func matrixGraph() *formatGraph {
	g := newFormatGraph(int(matFormatCount))
	g.addEdge(int(MCpuLil), int(MCpuDok), 1)
	g.addEdge(int(MCpuDok), int(MCpuCoo), 1)
	g.addEdge(int(MCpuCoo), int(MCpuCsr), 1)
	g.addEdge(int(MCpuCsr), int(MCpuCsc), 1)
	// Multi-hop costs for non-adjacent ring pairs, precomputed statically
	// rather than solved with a general shortest-path search at runtime
	// (the ring never grows, so the edge table is exhaustive).
	g.addEdge(int(MCpuLil), int(MCpuCoo), 2)
	g.addEdge(int(MCpuLil), int(MCpuCsr), 3)
	g.addEdge(int(MCpuLil), int(MCpuCsc), 4)
	g.addEdge(int(MCpuDok), int(MCpuCsr), 2)
	g.addEdge(int(MCpuDok), int(MCpuCsc), 3)
	g.addEdge(int(MCpuCoo), int(MCpuCsc), 2)
	g.addEdge(int(MCpuCoo), int(MAccCoo), 5)
	g.addEdge(int(MCpuCsr), int(MAccCsr), 5)
	g.addEdge(int(MCpuCsc), int(MAccCsc), 5)
	return g
}
