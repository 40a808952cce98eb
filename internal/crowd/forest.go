package crowd

import (
	"math"
	"math/rand"
	"sort"
)

// A bagged ensemble of CART-style decision trees. The corpus has no
// tree-learning dependency, so the ensemble is self-contained and all
// state is exported for gob persistence alongside the encoder.

const (
	forestTrees    = 100
	maxTreeDepth   = 10
	minSplitSize   = 4
	minLeafSamples = 2
)

// TreeNode is one node of a decision tree. Leaf nodes carry a class
// distribution; internal nodes route on Feature <= Threshold.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
	Dist      []float64
}

// DecisionTree is a single fitted tree.
type DecisionTree struct {
	Root *TreeNode
}

// Forest is the fitted ensemble.
type Forest struct {
	Trees      []*DecisionTree
	NumClasses int
}

// TrainForest fits forestTrees trees on bootstrap resamples of the
// dataset, each split drawing sqrt(width) candidate features. The
// caller owns the rng, which fixes the fit for a given seed.
func TrainForest(rng *rand.Rand, features [][]float64, labels []int, numClasses int) *Forest {
	f := &Forest{
		Trees:      make([]*DecisionTree, 0, forestTrees),
		NumClasses: numClasses,
	}
	for range forestTrees {
		idx := make([]int, len(features))
		for i := range idx {
			idx[i] = rng.Intn(len(features))
		}
		root := growTree(rng, features, labels, idx, numClasses, 0)
		f.Trees = append(f.Trees, &DecisionTree{Root: root})
	}
	return f
}

// Predict averages the leaf class distributions across trees and
// returns the argmax class with its averaged probability vector.
// Probabilities sum to 1; ties resolve to the lowest class index.
func (f *Forest) Predict(x []float64) (int, []float64) {
	probs := make([]float64, f.NumClasses)
	for _, t := range f.Trees {
		dist := t.Root.walk(x)
		for c, p := range dist {
			probs[c] += p
		}
	}
	for c := range probs {
		probs[c] /= float64(len(f.Trees))
	}
	best := 0
	for c := 1; c < len(probs); c++ {
		if probs[c] > probs[best] {
			best = c
		}
	}
	return best, probs
}

func (n *TreeNode) walk(x []float64) []float64 {
	if n.Dist != nil {
		return n.Dist
	}
	if x[n.Feature] <= n.Threshold {
		return n.Left.walk(x)
	}
	return n.Right.walk(x)
}

func growTree(rng *rand.Rand, features [][]float64, labels []int, idx []int, numClasses, depth int) *TreeNode {
	counts := classCounts(labels, idx, numClasses)
	if depth >= maxTreeDepth || len(idx) < minSplitSize || isPure(counts) {
		return leaf(counts, len(idx))
	}

	feature, threshold, ok := bestSplit(rng, features, labels, idx, numClasses)
	if !ok {
		return leaf(counts, len(idx))
	}

	var left, right []int
	for _, i := range idx {
		if features[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < minLeafSamples || len(right) < minLeafSamples {
		return leaf(counts, len(idx))
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growTree(rng, features, labels, left, numClasses, depth+1),
		Right:     growTree(rng, features, labels, right, numClasses, depth+1),
	}
}

// bestSplit scans sqrt(width) randomly chosen features for the
// threshold minimising weighted Gini impurity.
func bestSplit(rng *rand.Rand, features [][]float64, labels []int, idx []int, numClasses int) (int, float64, bool) {
	width := len(features[0])
	mtry := int(math.Ceil(math.Sqrt(float64(width))))

	bestGini := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	for _, feature := range rng.Perm(width)[:mtry] {
		ordered := make([]int, len(idx))
		copy(ordered, idx)
		sort.Slice(ordered, func(a, b int) bool {
			return features[ordered[a]][feature] < features[ordered[b]][feature]
		})

		leftCounts := make([]int, numClasses)
		rightCounts := classCounts(labels, idx, numClasses)
		total := len(ordered)

		for pos := 1; pos < total; pos++ {
			c := labels[ordered[pos-1]]
			leftCounts[c]++
			rightCounts[c]--

			prev := features[ordered[pos-1]][feature]
			cur := features[ordered[pos]][feature]
			if cur == prev {
				continue
			}

			gini := weightedGini(leftCounts, pos, rightCounts, total-pos)
			if gini < bestGini {
				bestGini = gini
				bestFeature = feature
				bestThreshold = (prev + cur) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func weightedGini(left []int, nLeft int, right []int, nRight int) float64 {
	total := float64(nLeft + nRight)
	return float64(nLeft)/total*gini(left, nLeft) + float64(nRight)/total*gini(right, nRight)
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		impurity -= p * p
	}
	return impurity
}

func classCounts(labels []int, idx []int, numClasses int) []int {
	counts := make([]int, numClasses)
	for _, i := range idx {
		counts[labels[i]]++
	}
	return counts
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func leaf(counts []int, n int) *TreeNode {
	dist := make([]float64, len(counts))
	if n > 0 {
		for c, count := range counts {
			dist[c] = float64(count) / float64(n)
		}
	}
	return &TreeNode{Dist: dist}
}
