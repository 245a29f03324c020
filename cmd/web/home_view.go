package main

import (
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/gazetteer"
)

// FeaturedCard is a quick-view card on the landing page.
type FeaturedCard struct {
	ID       int
	Name     string
	Caption  string
	Cover    string
	ModalURL string
	PanoURL  string
}

// HomeView is the render model of the landing page.
type HomeView struct {
	Lang     string
	Featured []FeaturedCard
	Total    int
	Mapped   int
	WithPano int
}

// buildHomeView takes the first n records in dataset order.
func buildHomeView(ds *gazetteer.Dataset, n int, lang string) HomeView {
	records := ds.Records()
	view := HomeView{Lang: lang, Total: len(records)}
	for _, r := range records {
		if r.Mappable() {
			view.Mapped++
		}
		if r.HasPano() {
			view.WithPano++
		}
	}
	if n > len(records) {
		n = len(records)
	}
	view.Featured = make([]FeaturedCard, 0, n)
	for _, r := range records[:n] {
		view.Featured = append(view.Featured, FeaturedCard{
			ID:       r.ID,
			Name:     r.Name,
			Caption:  caption(r),
			Cover:    r.Cover(),
			ModalURL: modalURL(r.ID),
			PanoURL:  panoURL(r.ID),
		})
	}
	return view
}
