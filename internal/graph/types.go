package graph

import "fmt"

// DefaultBaseURL is the Graph API endpoint all requests are built against.
const DefaultBaseURL = "https://graph.facebook.com/v2.5"

// Error is the structured error object the Graph API returns in place of a
// payload: {"error": {"message": ..., "code": ...}}.
type Error struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("graph: API error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("graph: API error: %s", e.Message)
}

// Point is a single data point of an insight time series. Page-style series
// carry end_time, app/event-style series carry time; DateBucket returns
// whichever is set.
type Point struct {
	EndTime    string            `json:"end_time"`
	Time       string            `json:"time"`
	Value      interface{}       `json:"value"`
	Breakdowns map[string]string `json:"breakdowns"`
}

// DateBucket returns the date identifier the API attached to this point.
func (p Point) DateBucket() string {
	if p.EndTime != "" {
		return p.EndTime
	}
	return p.Time
}

// seriesEntry is one element of the response "data" list. App/event series
// are bare points; page series wrap the points in a one-element list of
// {name, values: [...]} objects.
type seriesEntry struct {
	Point
	Name   string  `json:"name"`
	Values []Point `json:"values"`
}

// envelope is the common Graph API response shape.
type envelope struct {
	Data  []seriesEntry `json:"data"`
	Name  string        `json:"name"`
	Error *Error        `json:"error"`
}

// points flattens the two series shapes into a single point list.
// A wrapper entry with an empty values list yields zero points, matching
// the bare-data empty case.
func (e envelope) points() []Point {
	if len(e.Data) == 0 {
		return nil
	}
	if e.Data[0].Values != nil {
		return e.Data[0].Values
	}
	pts := make([]Point, 0, len(e.Data))
	for _, d := range e.Data {
		pts = append(pts, d.Point)
	}
	return pts
}
