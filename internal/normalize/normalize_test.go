package normalize

import "testing"

func TestCleanText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Senior   Engineer ", "Senior Engineer"},
		{"Backend Developer", "Backend Developer"},
		{"\n\tOps\n", "Ops"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanText(c.in); got != c.want {
			t.Errorf("CleanText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLocation(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Stockholm · Sweden", "Stockholm, Sweden"},
		{"Berlin | Germany", "Berlin, Germany"},
		{"Stockholm, Stockholm County, Sweden", "Stockholm, Sweden"},
		{"Remote, Remote", "Remote"},
		{"Location: Oslo, Norway", "Oslo, Norway"},
		{"  ", ""},
		{"Hybrid", "Hybrid"},
	}
	for _, c := range cases {
		if got := Location(c.in); got != c.want {
			t.Errorf("Location(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{
			"HTTPS://Careers.Acme.COM/jobs/42?utm_source=linkedin&b=2&a=1#apply",
			"https://careers.acme.com/jobs/42?a=1&b=2",
		},
		{
			"https://acme.com/jobs/42?gclid=xyz",
			"https://acme.com/jobs/42",
		},
		{"https://acme.com/jobs/42", "https://acme.com/jobs/42"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CanonicalURL(c.in); got != c.want {
			t.Errorf("CanonicalURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolveURL(t *testing.T) {
	base := "https://careers.acme.com/teams/eng"

	cases := []struct {
		href string
		want string
	}{
		{"/jobs/42", "https://careers.acme.com/jobs/42"},
		{"jobs/42", "https://careers.acme.com/teams/jobs/42"},
		{"https://other.com/x", "https://other.com/x"},
		{"//cdn.acme.com/x", "https://cdn.acme.com/x"},
		{"mailto:hr@acme.com", ""},
		{"tel:+4612345", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := ResolveURL(base, c.href); got != c.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", c.href, got, c.want)
		}
	}
}

func TestCompanyFromURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://career.acme.com/", "acme"},
		{"https://jobs.acme.io/positions", "acme"},
		{"https://example-co.teamtailor.com/", "example-co"},
		{"https://boards.greenhouse.io/acme", "acme"},
		{"https://jobs.lever.co/acme", "acme"},
		{"https://www.acme.com/careers", "acme"},
		{"not a url at all ::", "unknown"},
	}
	for _, c := range cases {
		if got := CompanyFromURL(c.in); got != c.want {
			t.Errorf("CompanyFromURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPostingIDStable(t *testing.T) {
	a := PostingID("Acme", "https://acme.com/jobs/42?utm_source=x")
	b := PostingID("acme", "https://ACME.com/jobs/42")
	if a != b {
		t.Errorf("id not stable across cosmetic variants: %s vs %s", a, b)
	}

	other := PostingID("acme", "https://acme.com/jobs/43")
	if a == other {
		t.Errorf("distinct urls collided on id %s", a)
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := Fingerprint("acme", "Engineer", "https://acme.com/jobs/42")

	if got := Fingerprint("acme", " Engineer ", "https://acme.com/jobs/42"); got != base {
		t.Errorf("whitespace changed fingerprint")
	}
	if got := Fingerprint("acme", "Senior Engineer", "https://acme.com/jobs/42"); got == base {
		t.Errorf("title change did not change fingerprint")
	}
	if got := Fingerprint("acme", "Engineer", "https://acme.com/jobs/43"); got == base {
		t.Errorf("url change did not change fingerprint")
	}
}

func TestDetailFingerprint(t *testing.T) {
	if got := DetailFingerprint(""); got != "" {
		t.Errorf("empty description should have empty fingerprint, got %q", got)
	}
	a := DetailFingerprint("about the role")
	if a == "" || a == DetailFingerprint("different text") {
		t.Errorf("detail fingerprint not distinguishing content")
	}
}
