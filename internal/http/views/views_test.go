package views

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-ministry-site/internal/domain"
	"github.com/tbourn/go-ministry-site/internal/services"
)

func strp(s string) *string { return &s }

func TestRenderHome(t *testing.T) {
	r, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.Now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	page := &services.HomePage{
		Site: services.SiteMeta{Name: "LFC Teens Byazhin", Description: "Youth church", Keywords: "church,youth"},
		Posts: []domain.ScripturePost{
			{ID: 7, Scriptures: "John 3:16", Message: "For God so loved <the world>", Likes: 12, IsActive: true},
		},
		Beliefs: []domain.Belief{{ID: 1, Name: "the holy trinity", Detail: "One God"}},
		Announcements: []domain.Announcement{
			{ID: 2, Topic: "Camp", Body: "Bring a tent", Date: domain.NewDate(time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC))},
		},
		Units: []domain.MinistryUnit{
			{ID: 3, Name: "choir", Leader: "Ada", LeaderWhatsApp: strp("+234 803-555-0101")},
		},
		ContactInfo: &domain.ContactInfo{
			ChurchName:     "LFC Teens Byazhin",
			WhatsAppNumber: "+234 (0) 803 555 0102",
			ServiceTimes:   "Sunday 8am\r\n\r\nWednesday 5pm",
		},
	}

	var buf bytes.Buffer
	if err := r.RenderHome(&buf, page); err != nil {
		t.Fatalf("RenderHome: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>LFC Teens Byazhin</title>",
		`action="/add-like/"`,
		`name="post_id" value="7"`,
		`data-post="7">12</span>`,
		"For God so loved &lt;the world&gt;",
		"The Holy Trinity",
		"Choir",
		"June 14, 2025",
		`datetime="2025-06-14"`,
		"https://wa.me/2348035550101",
		"https://wa.me/23408035550102",
		"<li>Sunday 8am</li><li>Wednesday 5pm</li>",
		"&copy; 2025",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered page missing %q", want)
		}
	}
	if strings.Contains(out, `class="hero"`) {
		t.Fatalf("empty hero section should be omitted")
	}
}

func TestRenderHome_EmptyPage(t *testing.T) {
	r, err := New("/custom-like")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := r.RenderHome(&buf, &services.HomePage{Site: services.SiteMeta{Name: "Site"}}); err != nil {
		t.Fatalf("RenderHome: %v", err)
	}
	if strings.Contains(buf.String(), "/custom-like") {
		t.Fatalf("like form rendered without posts")
	}
}

func TestHelpers(t *testing.T) {
	if got := waLink("n/a"); got != "" {
		t.Fatalf("waLink without digits = %q", got)
	}
	if got := deref(nil); got != "" {
		t.Fatalf("deref(nil) = %q", got)
	}
	if got := longDate(domain.Date{}); got != "" {
		t.Fatalf("longDate(zero) = %q", got)
	}
	if got := lines(" a \n\n b "); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("lines = %q", got)
	}
}

func TestStatic(t *testing.T) {
	for _, name := range []string{"site.js", "site.css"} {
		if _, err := fs.Stat(Static(), name); err != nil {
			t.Fatalf("static %s: %v", name, err)
		}
	}
}
