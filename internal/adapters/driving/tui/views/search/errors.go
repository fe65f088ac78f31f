package search

import "errors"

// ErrNoSearchService indicates that the view was built without a search service.
var ErrNoSearchService = errors.New("search: no search service configured")
