package banner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Normalizer turns one raw availability reply into a Snapshot. The search
// feed answers structured json, some portals only render a document, both
// live behind this one contract.
type Normalizer interface {
	Normalize(body []byte, crn string) (Snapshot, error)
}

// count tolerates the feed's habit of sending numbers as strings or null,
// anything that fails numeric parsing degrades to zero.
type count int

func (c *count) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil || n < 0 {
		*c = 0
		return nil
	}
	*c = count(n)
	return nil
}

type facultyMember struct {
	DisplayName string `json:"displayName"`
}

type meetingTime struct {
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`

	BeginTime           string `json:"beginTime"`
	EndTime             string `json:"endTime"`
	BuildingDescription string `json:"buildingDescription"`
	Room                string `json:"room"`
}

type meetingFaculty struct {
	MeetingTime *meetingTime `json:"meetingTime"`
}

type courseSection struct {
	CourseReferenceNumber string `json:"courseReferenceNumber"`
	SubjectCourse         string `json:"subjectCourse"`
	CourseTitle           string `json:"courseTitle"`
	TermDesc              string `json:"termDesc"`
	SequenceNumber        string `json:"sequenceNumber"`
	CampusDescription     string `json:"campusDescription"`

	SeatsAvailable    count `json:"seatsAvailable"`
	MaximumEnrollment count `json:"maximumEnrollment"`
	Enrollment        count `json:"enrollment"`
	WaitAvailable     count `json:"waitAvailable"`
	WaitCapacity      count `json:"waitCapacity"`
	CreditHours       count `json:"creditHours"`

	Faculty         []facultyMember  `json:"faculty"`
	MeetingsFaculty []meetingFaculty `json:"meetingsFaculty"`
}

type searchResponse struct {
	Success    bool            `json:"success"`
	TotalCount int             `json:"totalCount"`
	Data       []courseSection `json:"data"`
}

// JSONNormalizer handles the structured search feed reply.
type JSONNormalizer struct{}

func (JSONNormalizer) Normalize(body []byte, crn string) (Snapshot, error) {
	now := time.Now()

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Snapshot{}, fmt.Errorf("%w: empty body", ErrUnparseable)
	}
	if trimmed[0] == '<' {
		return Snapshot{}, fmt.Errorf("%w: got markup where json was expected", ErrUnparseable)
	}

	var parsed searchResponse
	err := json.Unmarshal(trimmed, &parsed)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	// an empty or null data set is not an error: the feed drops sections
	// it has nothing to say about, which reads the same as "no seats"
	if len(parsed.Data) == 0 {
		return zeroSeatSnapshot(crn, now), nil
	}

	var section *courseSection
	for i := range parsed.Data {
		if parsed.Data[i].CourseReferenceNumber == crn {
			section = &parsed.Data[i]
			break
		}
	}
	if section == nil {
		return zeroSeatSnapshot(crn, now), nil
	}

	return sectionToSnapshot(*section, crn, now), nil
}

func sectionToSnapshot(section courseSection, crn string, now time.Time) Snapshot {
	instructor := UnknownInstructor
	if len(section.Faculty) > 0 && section.Faculty[0].DisplayName != "" {
		instructor = section.Faculty[0].DisplayName
	}

	return Snapshot{
		CRN:               crn,
		CourseCode:        section.SubjectCourse,
		Title:             section.CourseTitle,
		Term:              section.TermDesc,
		Section:           section.SequenceNumber,
		SeatsAvailable:    int(section.SeatsAvailable),
		MaximumEnrollment: int(section.MaximumEnrollment),
		Enrollment:        int(section.Enrollment),
		WaitAvailable:     int(section.WaitAvailable),
		WaitCapacity:      int(section.WaitCapacity),
		Instructor:        instructor,
		Campus:            section.CampusDescription,
		Credits:           int(section.CreditHours),
		Meeting:           extractMeeting(section.MeetingsFaculty),
		Time:              now,
	}
}

func extractMeeting(meetings []meetingFaculty) *Meeting {
	if len(meetings) == 0 || meetings[0].MeetingTime == nil {
		return nil
	}
	mt := meetings[0].MeetingTime

	var days []string
	for _, day := range []struct {
		set  bool
		name string
	}{
		{mt.Monday, "Mon"},
		{mt.Tuesday, "Tue"},
		{mt.Wednesday, "Wed"},
		{mt.Thursday, "Thu"},
		{mt.Friday, "Fri"},
		{mt.Saturday, "Sat"},
		{mt.Sunday, "Sun"},
	} {
		if day.set {
			days = append(days, day.name)
		}
	}

	return &Meeting{
		Days:      strings.Join(days, ", "),
		StartTime: formatClock(mt.BeginTime),
		EndTime:   formatClock(mt.EndTime),
		Building:  mt.BuildingDescription,
		Room:      mt.Room,
	}
}
