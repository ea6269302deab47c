package query

import (
	"strings"
	"testing"
)

func TestEncodeEmpty(t *testing.T) {
	if got := (Options{}).Encode(); got != "" {
		t.Errorf("Encode() = %q, want empty", got)
	}
}

func TestEncodeOrder(t *testing.T) {
	opts := Options{
		MaxResults:   10,
		StartIndex:   21,
		Keywords:     "sunset",
		Tags:         "beach,holiday",
		Visibility:   VisibilityPublic,
		ThumbSizes:   "72,144",
		MaxImageSize: "d",
		Location:     "London",
		BoundingBox:  "-122.5,37.7,-122.3,37.8",
	}
	got := opts.Encode()
	want := "&max-results=10&start-index=21&access=public&q=sunset&tag=beach,holiday" +
		"&thumbsize=72,144&imgmax=d&l=London&bbox=-122.5,37.7,-122.3,37.8"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncodeSingleOption(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"max results", Options{MaxResults: 5}, "&max-results=5"},
		{"start index", Options{StartIndex: 1}, "&start-index=1"},
		{"visibility", Options{Visibility: VisibilityPrivate}, "&access=private"},
		{"keywords", Options{Keywords: "dog"}, "&q=dog"},
		{"tags", Options{Tags: "pets"}, "&tag=pets"},
		{"thumb sizes", Options{ThumbSizes: "288"}, "&thumbsize=288"},
		{"max image size", Options{MaxImageSize: "800"}, "&imgmax=800"},
		{"location", Options{Location: "Paris"}, "&l=Paris"},
		{"bounding box", Options{BoundingBox: "1,2,3,4"}, "&bbox=1,2,3,4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeSortDescendingQuirk(t *testing.T) {
	// Descending sort needs a q parameter to take effect, so an empty one
	// is appended when no keywords are set.
	got := Options{SortDescending: true}.Encode()
	if got != "&q=" {
		t.Errorf("Encode() = %q, want %q", got, "&q=")
	}

	// With keywords set there is exactly one q parameter.
	got = Options{SortDescending: true, Keywords: "cat"}.Encode()
	if strings.Count(got, "&q=") != 1 {
		t.Errorf("Encode() = %q, want a single q parameter", got)
	}
}

func TestEncodeLocationAppearsOnce(t *testing.T) {
	got := Options{Location: "Tokyo", BoundingBox: "1,2,3,4"}.Encode()
	if strings.Count(got, "&l=") != 1 {
		t.Errorf("Encode() = %q, want a single l parameter", got)
	}
}
