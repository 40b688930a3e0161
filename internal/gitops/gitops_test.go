package gitops

import "testing"

func TestRepoNameFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://github.com/example/python-project", "python-project"},
		{"https://github.com/example/python-project.git", "python-project"},
		{"https://github.com/example/python-project/", "python-project"},
		{"git@github.com:example/flask-app.git", "flask-app"},
		{"", "repo"},
	}

	for _, c := range cases {
		got := RepoNameFromURL(c.url)
		if got != c.want {
			t.Errorf("RepoNameFromURL(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}
