// Package evaluate computes classifier metrics: confusion matrices,
// per-class precision/recall/F1, ROC and precision-recall curves, and a
// per-split evaluation of a binary classifier at a decision threshold.
package evaluate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Matrix is a confusion matrix. Counts[i][j] is the number of samples whose
// actual label is Labels[i] and whose predicted label is Labels[j].
type Matrix struct {
	Labels []int
	Counts [][]int
}

// ConfusionMatrix tallies actual against predicted labels. Labels are the
// sorted union of both sequences.
func ConfusionMatrix(yTrue, yPred []int) (*Matrix, error) {
	if err := checkLengths("confusion matrix", len(yTrue), len(yPred)); err != nil {
		return nil, err
	}
	labels := unionLabels(yTrue, yPred)
	pos := make(map[int]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}
	for i := range yTrue {
		counts[pos[yTrue[i]]][pos[yPred[i]]]++
	}
	return &Matrix{Labels: labels, Counts: counts}, nil
}

func unionLabels(seqs ...[]int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, s := range seqs {
		for _, v := range s {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	}
	sort.Ints(out)
	return out
}

// At returns the count for an (actual, predicted) label pair.
func (m *Matrix) At(actual, predicted int) int {
	i, j := -1, -1
	for k, l := range m.Labels {
		if l == actual {
			i = k
		}
		if l == predicted {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0
	}
	return m.Counts[i][j]
}

// String renders the matrix with "Actual" rows and "Predicted" columns.
func (m *Matrix) String() string {
	labels := make([]string, len(m.Labels))
	width := len("Actual")
	for i, l := range m.Labels {
		labels[i] = strconv.Itoa(l)
		if len(labels[i]) > width {
			width = len(labels[i])
		}
	}
	cell := 1
	for _, row := range m.Counts {
		for _, v := range row {
			if n := len(strconv.Itoa(v)); n > cell {
				cell = n
			}
		}
	}
	for _, l := range labels {
		if len(l) > cell {
			cell = len(l)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  Predicted\n", width, "")
	fmt.Fprintf(&b, "%-*s", width, "Actual")
	for _, l := range labels {
		fmt.Fprintf(&b, "  %*s", cell, l)
	}
	b.WriteString("\n")
	for i, row := range m.Counts {
		fmt.Fprintf(&b, "%-*s", width, labels[i])
		for _, v := range row {
			fmt.Fprintf(&b, "  %*d", cell, v)
		}
		b.WriteString("\n")
	}
	return b.String()
}
