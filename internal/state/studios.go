package state

import "github.com/five82/booth/internal/market"

// Studios is the studio collection state. Loading and Error are shared by
// every operation, so the last operation to settle wins.
type Studios struct {
	Items   []market.Studio
	Current *market.Studio
	Loading bool
	Error   string
}

// Pending marks an operation as in flight and clears the last error.
func (s Studios) Pending() Studios {
	s.Loading = true
	s.Error = ""
	return s
}

// Rejected records a failed operation.
func (s Studios) Rejected(msg string) Studios {
	s.Loading = false
	s.Error = msg
	return s
}

// Listed replaces the collection.
func (s Studios) Listed(items []market.Studio) Studios {
	s.Loading = false
	s.Items = cloneStudios(items)
	if s.Items == nil {
		s.Items = []market.Studio{}
	}
	return s
}

// Fetched replaces the current studio only.
func (s Studios) Fetched(item market.Studio) Studios {
	s.Loading = false
	s.Current = ptr(item)
	return s
}

// Created appends the stored record. Repeated creates may append duplicates.
func (s Studios) Created(item market.Studio) Studios {
	s.Loading = false
	items := make([]market.Studio, 0, len(s.Items)+1)
	items = append(items, s.Items...)
	s.Items = append(items, item.Clone())
	return s
}

// Updated replaces the current studio and the first item with the same ID.
// Items are unchanged when no item matches.
func (s Studios) Updated(item market.Studio) Studios {
	s.Loading = false
	s.Current = ptr(item)
	for i := range s.Items {
		if s.Items[i].ID == item.ID {
			items := cloneStudios(s.Items)
			items[i] = item.Clone()
			s.Items = items
			break
		}
	}
	return s
}

// Deleted removes every item with id and clears the current studio if it
// matches.
func (s Studios) Deleted(id string) Studios {
	s.Loading = false
	items := make([]market.Studio, 0, len(s.Items))
	for _, item := range s.Items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	s.Items = items
	if s.Current != nil && s.Current.ID == id {
		s.Current = nil
	}
	return s
}

// ClearCurrent drops the current studio.
func (s Studios) ClearCurrent() Studios {
	s.Current = nil
	return s
}

// ClearError drops the last error.
func (s Studios) ClearError() Studios {
	s.Error = ""
	return s
}

// Find returns the item with id, if present.
func (s Studios) Find(id string) (market.Studio, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return market.Studio{}, false
}

func (s Studios) clone() Studios {
	s.Items = cloneStudios(s.Items)
	if s.Current != nil {
		s.Current = ptr(*s.Current)
	}
	return s
}

func ptr(item market.Studio) *market.Studio {
	dup := item.Clone()
	return &dup
}

func cloneStudios(items []market.Studio) []market.Studio {
	if items == nil {
		return nil
	}
	dup := make([]market.Studio, len(items))
	for i, item := range items {
		dup[i] = item.Clone()
	}
	return dup
}
