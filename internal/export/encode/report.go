package encode

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/record"
	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/pkg/format"
	"github.com/jmylchreest/eventexport/pkg/pdfreport"
)

const (
	// chartHeight is the bar area height of every report chart, in mm.
	chartHeight = 40.0
	// captionBlock is the height of a one-line paragraph.
	captionBlock = 8.0
)

// CanvasFactory creates the drawing surface for one report.
type CanvasFactory func(title string) pdfreport.Canvas

// Report renders a paginated analytics document with one section per
// category of event data.
type Report struct {
	canvas CanvasFactory
	now    func() time.Time
}

// NewReport creates a report encoder drawing PDF pages.
func NewReport() *Report {
	return &Report{
		canvas: func(title string) pdfreport.Canvas { return pdfreport.NewPDFCanvas(title) },
		now:    time.Now,
	}
}

// WithCanvas overrides the drawing surface.
func (r *Report) WithCanvas(f CanvasFactory) *Report {
	r.canvas = f
	return r
}

type section struct {
	key     string
	heading string
	build   func(d *pdfreport.Document, records []record.Record)
}

var sections = []section{
	{source.SectionMessages, "Messages", func(d *pdfreport.Document, rs []record.Record) {
		chart(d, "Messages by date", Bucket(CountByDay(rs, "sent_at", "sentAt", "created_at"), maxDayBars))
		table(d, "By channel", CountBy(rs, "channel"))
	}},
	{source.SectionGuests, "Guests", func(d *pdfreport.Document, rs []record.Record) {
		chart(d, "Guests by group", Fold(CountBy(rs, "guest_group", "guestGroup", "group"), maxBars))
		table(d, "Registrations per day", CountByDay(rs, "created_at", "createdAt"))
	}},
	{source.SectionModules, "Modules", func(d *pdfreport.Document, rs []record.Record) {
		table(d, "By type", CountBy(rs, "module_type", "moduleType", "type"))
	}},
	{source.SectionResponses, "Responses", func(d *pdfreport.Document, rs []record.Record) {
		chart(d, "Responses by type", CountFunc(rs, func(r record.Record) string {
			return decodeResponse(r).Type()
		}))
		avg, n := AverageRating(rs)
		d.KeyValue("Average rating", format.Rating(avg, 5, n))
		table(d, "By module", Fold(CountBy(rs, "module_title"), maxBars))
	}},
	{source.SectionAnnouncements, "Announcements", func(d *pdfreport.Document, rs []record.Record) {
		table(d, "Sent per day", CountByDay(rs, "sent_at", "sentAt", "created_at"))
	}},
	{source.SectionItineraries, "Itineraries", func(d *pdfreport.Document, rs []record.Record) {
		chart(d, "Sessions by date", Bucket(CountByDay(rs, "starts_at", "startsAt", "start_time"), maxDayBars))
	}},
	{source.SectionActivity, "Activity", func(d *pdfreport.Document, rs []record.Record) {
		chart(d, "Actions", Fold(CountBy(rs, "action"), maxBars))
		table(d, "Per day", CountByDay(rs, "occurred_at", "occurredAt", "created_at"))
	}},
}

// Encode implements Encoder.
func (r *Report) Encode(ctx context.Context, req Request) (Output, error) {
	bySection := map[string][]record.Record{}
	for _, rec := range req.Records {
		bySection[rec.Section()] = append(bySection[rec.Section()], rec)
	}

	title := req.Bundle.Name
	if req.EventName != "" {
		title = req.EventName + " - " + req.Bundle.Name
	}
	d := pdfreport.New(r.canvas(title))
	d.Title(title)
	d.KeyValue("Generated", r.now().UTC().Format("2006-01-02 15:04 MST"))
	if req.Placeholder {
		d.Paragraph("This report was generated from placeholder data.")
	}

	d.Heading("Overview")
	for _, s := range sections {
		d.KeyValue(s.heading, format.Number(int64(len(bySection[s.key]))))
	}

	for i, s := range sections {
		if err := ctx.Err(); err != nil {
			return Output{}, err
		}
		d.Heading(s.heading)
		records := bySection[s.key]
		d.KeyValue("Total", format.Number(int64(len(records))))
		if len(records) == 0 {
			d.Paragraph("No " + strings.ToLower(s.heading) + " recorded for this event.")
		} else {
			s.build(d, records)
		}
		req.progress(archiveProgressStart + (i+1)*(archiveProgressEnd-archiveProgressStart)/len(sections))
	}

	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return Output{}, fmt.Errorf("rendering report: %w", err)
	}
	return Output{
		Payload:     buf.Bytes(),
		ContentType: req.Bundle.Kind.ContentType(),
		Items:       len(req.Records),
	}, nil
}

// chart draws a captioned bar chart, kept on one page with its caption.
func chart(d *pdfreport.Document, caption string, counts []Count) {
	if len(counts) == 0 {
		return
	}
	d.EnsureSpace(captionBlock + pdfreport.ChartHeight(chartHeight) + 3)
	d.Paragraph(caption)
	labels, values := split(counts)
	d.BarChart(labels, values, chartHeight)
}

func table(d *pdfreport.Document, caption string, counts []Count) {
	if len(counts) == 0 {
		return
	}
	d.Paragraph(caption)
	total := 0
	for _, c := range counts {
		total += c.Value
	}
	for _, c := range counts {
		d.KeyValue("  "+c.Label, format.Number(int64(c.Value))+" ("+format.Percentage(int64(c.Value), int64(total))+")")
	}
}
