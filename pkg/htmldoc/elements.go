package htmldoc

import (
	"context"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"digital.vasic.conditions/pkg/condition"
	"digital.vasic.conditions/pkg/failure"
)

// root yields the document a lookup chain starts from.
type root interface {
	// selection returns the document root and whether lookup
	// failures against it are final.
	selection(ctx context.Context) (*goquery.Selection, bool, error)
}

// narrowFunc applies one lookup step to the root selection.
type narrowFunc func(root *goquery.Selection, structural bool) (*goquery.Selection, error)

// Elements is a lazily resolved selection. It is a source of the
// normalised texts of the selected elements and can be narrowed
// with First, Get and Find the way a page object chains lookups.
type Elements struct {
	label  string
	root   root
	narrow narrowFunc
}

func newCollection(r root, sel string) *Elements {
	return &Elements{
		label: sel,
		root:  r,
		narrow: func(s *goquery.Selection, _ bool) (*goquery.Selection, error) {
			m, err := cascadia.Compile(sel)
			if err != nil {
				return nil, failure.InvalidSelector(sel, err)
			}
			return s.FindMatcher(m), nil
		},
	}
}

func (e *Elements) derive(label string, step narrowFunc) *Elements {
	return &Elements{
		label: label,
		root:  e.root,
		narrow: func(s *goquery.Selection, structural bool) (*goquery.Selection, error) {
			parent, err := e.narrow(s, structural)
			if err != nil {
				return nil, err
			}
			return step(parent, structural)
		},
	}
}

// First narrows the selection to its first element. Fetching
// fails with a not-found error when the selection is empty.
func (e *Elements) First() *Elements {
	label := e.label + "[0]"
	return e.derive(label, func(s *goquery.Selection, structural bool) (*goquery.Selection, error) {
		if s.Length() == 0 {
			return nil, failure.NotFound(label, structural)
		}
		return s.First(), nil
	})
}

// Get narrows the selection to its i-th element. Fetching fails
// with an index-out-of-range error when there is no such element.
func (e *Elements) Get(i int) *Elements {
	label := e.label + "[" + strconv.Itoa(i) + "]"
	return e.derive(label, func(s *goquery.Selection, structural bool) (*goquery.Selection, error) {
		if i < 0 || i >= s.Length() {
			return nil, failure.IndexOutOfRange(label, i, s.Length(), structural)
		}
		return s.Eq(i), nil
	})
}

// Find selects the descendants of the selection matching sel.
// Lookup errors of the selection propagate unchanged.
func (e *Elements) Find(sel string) *Elements {
	label := e.label + "/" + sel
	m, compileErr := cascadia.Compile(sel)
	return e.derive(label, func(s *goquery.Selection, _ bool) (*goquery.Selection, error) {
		if compileErr != nil {
			return nil, failure.InvalidSelector(label, compileErr)
		}
		return s.FindMatcher(m), nil
	})
}

func (e *Elements) resolve(ctx context.Context) (*goquery.Selection, error) {
	s, structural, err := e.root.selection(ctx)
	if err != nil {
		return nil, err
	}
	return e.narrow(s, structural)
}

// Size returns the number of selected elements.
func (e *Elements) Size(ctx context.Context) (int, error) {
	s, err := e.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return s.Length(), nil
}

// Fetch returns the normalised text of every selected element in
// document order.
func (e *Elements) Fetch(ctx context.Context) ([]string, error) {
	s, err := e.resolve(ctx)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, s.Length())
	s.Each(func(_ int, el *goquery.Selection) {
		texts = append(texts, condition.Normalize(el.Text()))
	})
	return texts, nil
}

// Label returns the selector chain, e.g. ".menu[0]/li".
func (e *Elements) Label() string {
	return e.label
}
