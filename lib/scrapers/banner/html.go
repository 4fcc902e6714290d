package banner

import (
	"bytes"
	"fmt"
	"time"

	"coursewatch-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// HTMLNormalizer extracts availability from a rendered section-detail page
// instead of the structured feed. Field extraction is label based, so it
// survives cosmetic template changes as long as the labels stay put.
type HTMLNormalizer struct{}

func (HTMLNormalizer) Normalize(body []byte, crn string) (Snapshot, error) {
	now := time.Now()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	seats := htmlutil.LabeledField(doc, "Seats Available")
	capacity := htmlutil.LabeledField(doc, "Maximum Enrollment")
	if capacity == "" {
		capacity = htmlutil.LabeledField(doc, "Capacity")
	}
	enrollment := htmlutil.LabeledField(doc, "Enrollment")
	if enrollment == "" {
		enrollment = htmlutil.LabeledField(doc, "Enrolled")
	}

	// a page with none of the required counts is not an availability page
	// at all, likely a login or error document
	if seats == "" && capacity == "" && enrollment == "" {
		return Snapshot{}, fmt.Errorf("%w: no availability fields found in document", ErrUnparseable)
	}

	title := htmlutil.LabeledField(doc, "Title")
	if title == "" {
		title = htmlutil.CleanText(doc.Find("h1").First())
	}
	instructor := htmlutil.LabeledField(doc, "Instructor")
	if instructor == "" {
		instructor = UnknownInstructor
	}

	snapshot := Snapshot{
		CRN:               crn,
		CourseCode:        htmlutil.LabeledField(doc, "Course"),
		Title:             title,
		Term:              htmlutil.LabeledField(doc, "Term"),
		SeatsAvailable:    looseInt(seats),
		MaximumEnrollment: looseInt(capacity),
		Enrollment:        looseInt(enrollment),
		WaitAvailable:     looseInt(htmlutil.LabeledField(doc, "Waitlist Seats")),
		WaitCapacity:      looseInt(htmlutil.LabeledField(doc, "Waitlist Capacity")),
		Instructor:        instructor,
		Time:              now,
	}

	schedule := htmlutil.LabeledField(doc, "Schedule")
	location := htmlutil.LabeledField(doc, "Location")
	if schedule != "" || location != "" {
		snapshot.Meeting = &Meeting{
			Days:     schedule,
			Building: location,
		}
	}

	return snapshot, nil
}
