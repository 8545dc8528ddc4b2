package session

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Cookie is one persisted cookie record.
type Cookie struct {
	Domain   string
	HostOnly bool
	Path     string
	Secure   bool
	Expires  time.Time // zero for session cookies
	Name     string
	Value    string
}

func (c Cookie) key() string {
	return c.Domain + "\x00" + c.Path + "\x00" + c.Name
}

// Session is the cookie jar plus the user fields derived from the
// persistent-login endpoint. It implements http.CookieJar and remembers every
// cookie the jar accepted so it can be written back to disk.
type Session struct {
	mu      sync.Mutex
	jar     *cookiejar.Jar
	records map[string]Cookie

	userID      string
	accessToken string
}

func New() *Session {
	jar, _ := cookiejar.New(nil)
	return &Session{
		jar:     jar,
		records: make(map[string]Cookie),
	}
}

func (s *Session) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jar.SetCookies(u, cookies)
	now := time.Now()
	for _, c := range cookies {
		rec := Cookie{
			Domain:   u.Hostname(),
			HostOnly: true,
			Path:     c.Path,
			Secure:   c.Secure,
			Name:     c.Name,
			Value:    c.Value,
		}
		if c.Domain != "" {
			rec.Domain = "." + strings.TrimPrefix(c.Domain, ".")
			rec.HostOnly = false
		}
		if rec.Path == "" || !strings.HasPrefix(rec.Path, "/") {
			rec.Path = defaultPath(u.Path)
		}
		switch {
		case c.MaxAge < 0:
			delete(s.records, rec.key())
			continue
		case c.MaxAge > 0:
			rec.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		case !c.Expires.IsZero():
			rec.Expires = c.Expires
		}
		if !rec.Expires.IsZero() && !rec.Expires.After(now) {
			delete(s.records, rec.key())
			continue
		}
		s.records[rec.key()] = rec
	}
}

func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jar.Cookies(u)
}

// Records returns the known cookies sorted by domain, path and name.
func (s *Session) Records() []Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Cookie, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })
	return out
}

// Clear drops every cookie and the derived user fields.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jar, _ = cookiejar.New(nil)
	s.records = make(map[string]Cookie)
	s.userID = ""
	s.accessToken = ""
}

// SetUser stores the user fields returned by the persistent-login endpoint.
func (s *Session) SetUser(userID, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.accessToken = accessToken
}

func (s *Session) User() (userID, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.accessToken
}

// Add restores a persisted cookie into the jar, ignoring its expiry.
func (s *Session) Add(rec Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()

	host := strings.TrimPrefix(rec.Domain, ".")
	scheme := "http"
	if rec.Secure {
		scheme = "https"
	}
	u := &url.URL{Scheme: scheme, Host: host, Path: rec.Path}
	c := &http.Cookie{
		Name:   rec.Name,
		Value:  rec.Value,
		Path:   rec.Path,
		Secure: rec.Secure,
	}
	if !rec.HostOnly {
		c.Domain = host
	}
	s.jar.SetCookies(u, []*http.Cookie{c})
	s.records[rec.key()] = rec
}

const header = "# Netscape HTTP Cookie File"

// WriteTo writes the session cookies in Netscape cookies.txt format. Session
// cookies are kept, expired cookies are dropped.
func (s *Session) WriteTo(w io.Writer) (int64, error) {
	now := time.Now()
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, r := range s.Records() {
		if !r.Expires.IsZero() && !r.Expires.After(now) {
			continue
		}
		var expires int64
		if !r.Expires.IsZero() {
			expires = r.Expires.Unix()
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Domain, boolField(!r.HostOnly), r.Path, boolField(r.Secure), expires, r.Name, r.Value)
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// ReadFrom loads cookies written by WriteTo. Expiry is ignored on load; the
// remote service decides whether the cookies are still good.
func (s *Session) ReadFrom(r io.Reader) (int64, error) {
	var n int64
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		n += int64(len(line)) + 1
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return n, fmt.Errorf("malformed cookie line: %q", line)
		}
		rec := Cookie{
			Domain:   fields[0],
			HostOnly: fields[1] != "TRUE",
			Path:     fields[2],
			Secure:   fields[3] == "TRUE",
			Name:     fields[5],
			Value:    fields[6],
		}
		if ts, err := strconv.ParseInt(fields[4], 10, 64); err == nil && ts > 0 {
			rec.Expires = time.Unix(ts, 0)
		}
		s.Add(rec)
	}
	return n, sc.Err()
}

func boolField(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
