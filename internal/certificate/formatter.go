// Package certificate renders the printable certificate for a passing
// attempt. The output is a self-contained HTML document; printing or PDF
// conversion is the client's concern.
package certificate

import (
	"fmt"
	"html/template"
	"io"

	"ctg-quiz-service/internal/domain"
)

const courseName = "Concrete Technology Proficiency Certificate"

const certificateTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Certificate - {{.CandidateName}}</title>
<style>
  @page { size: A4 landscape; margin: 0; }
  body { font-family: Georgia, serif; background: #fff; color: #1f2937; margin: 0; }
  .sheet { box-sizing: border-box; width: 1050px; margin: 2rem auto; padding: 1rem; border: 6px solid #b45309; }
  .inner { border: 2px solid #92400e; padding: 3rem; text-align: center; }
  .seal { float: right; width: 7rem; height: 7rem; border: 4px solid #92400e; border-radius: 50%;
          display: flex; flex-direction: column; align-items: center; justify-content: center; background: #fffbeb; }
  .seal .org { font-size: 2rem; font-weight: 900; color: #92400e; }
  .title { font-size: 1.5rem; letter-spacing: .3em; color: #374151; }
  .name { font-size: 3rem; color: #92400e; margin: 1rem 0; }
  .course { font-size: 1.75rem; font-weight: 600; margin: .5rem 0; }
  .message { font-style: italic; max-width: 40rem; margin: 1.5rem auto; }
  .scoreline .pct { font-weight: 700; font-size: 1.25rem; }
  .footer { display: flex; justify-content: space-between; margin-top: 4rem; font-size: .9rem; }
  .sig { border-top: 1px solid #6b7280; padding-top: .5rem; min-width: 14rem; }
</style>
</head>
<body>
<div class="sheet"><div class="inner">
  <div class="seal"><span class="org">CTG</span><span>EST. 2014</span></div>
  <p class="title">CERTIFICATE OF ACHIEVEMENT</p>
  <p>This certificate is proudly presented to</p>
  <h1 class="name">{{.CandidateName}}</h1>
  <p>for successfully completing the</p>
  <p class="course">{{.CourseName}}</p>
  <p class="message">&ldquo;Congratulations on your excellent performance and dedication to mastering new knowledge.&rdquo;</p>
  <p class="scoreline">with a passing score of <span class="pct">{{.Percentage}}%</span>.</p>
  <div class="footer">
    <div class="sig"><strong>Manoj Balakrishnan</strong><br>Director, Concrete Technology Group</div>
    <div class="sig"><strong>Date</strong><br>{{.CompletionDate}}</div>
  </div>
</div></div>
</body>
</html>
`

var tmpl = template.Must(template.New("certificate").Parse(certificateTemplate))

type templateData struct {
	CandidateName  string
	CourseName     string
	Percentage     int
	CompletionDate string
}

// Formatter turns a finalized result into the certificate document.
type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

// Render writes the certificate HTML for a completed attempt.
func (f *Formatter) Render(w io.Writer, result domain.Result) error {
	data := templateData{
		CandidateName:  result.CandidateName,
		CourseName:     courseName,
		Percentage:     result.Percentage,
		CompletionDate: result.CompletedAt.Format("January 2, 2006"),
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render certificate: %w", err)
	}
	return nil
}
