package banner

import (
	"testing"

	"coursewatch-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const searchReply = `{
	"success": true,
	"totalCount": 2,
	"data": [
		{
			"courseReferenceNumber": "13254",
			"subjectCourse": "COMP1701",
			"courseTitle": "Intro to Computer Science",
			"termDesc": "Winter 2026",
			"sequenceNumber": "001",
			"campusDescription": "Main Campus",
			"seatsAvailable": 3,
			"maximumEnrollment": 35,
			"enrollment": 32,
			"waitAvailable": 5,
			"waitCapacity": 10,
			"creditHours": 3,
			"faculty": [{"displayName": "Stroustrup, Bjarne"}],
			"meetingsFaculty": [{
				"meetingTime": {
					"monday": true, "wednesday": true, "friday": true,
					"beginTime": "1000", "endTime": "1150",
					"buildingDescription": "Bissett", "room": "EB1021"
				}
			}]
		},
		{
			"courseReferenceNumber": "13255",
			"subjectCourse": "COMP1701",
			"courseTitle": "Intro to Computer Science",
			"seatsAvailable": 0,
			"maximumEnrollment": 35,
			"enrollment": 35,
			"faculty": []
		}
	]
}`

func TestNormalizeSearchReply(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/banner")
	defer cleanup()

	snapshot, err := JSONNormalizer{}.Normalize([]byte(searchReply), "13254")
	require.NoError(t, err)

	require.Equal(t, "13254", snapshot.CRN)
	require.Equal(t, "COMP1701", snapshot.CourseCode)
	require.Equal(t, "Intro to Computer Science", snapshot.Title)
	require.Equal(t, "Winter 2026", snapshot.Term)
	require.Equal(t, 3, snapshot.SeatsAvailable)
	require.Equal(t, 35, snapshot.MaximumEnrollment)
	require.Equal(t, 32, snapshot.Enrollment)
	require.Equal(t, 5, snapshot.WaitAvailable)
	require.Equal(t, "Stroustrup, Bjarne", snapshot.Instructor)
	require.True(t, snapshot.Open())
	require.Equal(t, "available", snapshot.Status())

	require.NotNil(t, snapshot.Meeting)
	require.Equal(t, "Mon, Wed, Fri", snapshot.Meeting.Days)
	require.Equal(t, "10:00 AM", snapshot.Meeting.StartTime)
	require.Equal(t, "11:50 AM", snapshot.Meeting.EndTime)
	require.Equal(t, "Bissett", snapshot.Meeting.Building)
}

func TestNormalizeFiltersByReferenceNumber(t *testing.T) {
	snapshot, err := JSONNormalizer{}.Normalize([]byte(searchReply), "13255")
	require.NoError(t, err)

	require.Equal(t, "13255", snapshot.CRN)
	require.Equal(t, 0, snapshot.SeatsAvailable)
	require.Equal(t, UnknownInstructor, snapshot.Instructor)
	require.Equal(t, "full", snapshot.Status())
	require.Nil(t, snapshot.Meeting)
}

func TestNormalizeEmptyDataIsZeroSeats(t *testing.T) {
	for _, body := range []string{
		`{"success": true, "totalCount": 0, "data": null}`,
		`{"success": true, "totalCount": 0, "data": []}`,
		`{"success": false, "data": [{"courseReferenceNumber": "99999", "seatsAvailable": 7}]}`,
	} {
		snapshot, err := JSONNormalizer{}.Normalize([]byte(body), "13254")
		require.NoError(t, err, body)
		require.Equal(t, "13254", snapshot.CRN)
		require.Equal(t, 0, snapshot.SeatsAvailable)
		require.Equal(t, "full", snapshot.Status())
		require.Equal(t, UnknownInstructor, snapshot.Instructor)
	}
}

func TestNormalizeMarkupIsUnparseable(t *testing.T) {
	for _, body := range []string{
		`<!DOCTYPE html><html><body>Please log in</body></html>`,
		`  <html><head><title>Login</title></head></html>`,
		``,
		`this is not json`,
	} {
		_, err := JSONNormalizer{}.Normalize([]byte(body), "13254")
		require.ErrorIs(t, err, ErrUnparseable, body)
	}
}

func TestNormalizeDegradesBadCounts(t *testing.T) {
	body := `{
		"success": true,
		"data": [{
			"courseReferenceNumber": "13254",
			"subjectCourse": "COMP1701",
			"courseTitle": "Intro to Computer Science",
			"seatsAvailable": "not-a-number",
			"maximumEnrollment": "35",
			"enrollment": null
		}]
	}`
	snapshot, err := JSONNormalizer{}.Normalize([]byte(body), "13254")
	require.NoError(t, err)
	require.Equal(t, 0, snapshot.SeatsAvailable)
	require.Equal(t, 35, snapshot.MaximumEnrollment)
	require.Equal(t, 0, snapshot.Enrollment)
	require.Equal(t, "Intro to Computer Science", snapshot.Title)
}

func TestFormatClock(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{"1000", "10:00 AM"},
		{"0930", "9:30 AM"},
		{"1150", "11:50 AM"},
		{"1200", "12:00 PM"},
		{"1350", "1:50 PM"},
		{"0000", "12:00 AM"},
		{"", ""},
		{"25:0", ""},
		{"9999", ""},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, formatClock(tc.raw), tc.raw)
	}
}
