package gateway

import "testing"

func TestObjectURL(t *testing.T) {
	cases := []struct {
		base, bucket, key, want string
	}{
		{"http://localhost:9000", "daybook", "entries/e1/a.png", "http://localhost:9000/daybook/entries/e1/a.png"},
		{"https://cdn.example.com/", "daybook", "entries/e1/my file.png", "https://cdn.example.com/daybook/entries/e1/my%20file.png"},
	}
	for _, tc := range cases {
		if got := objectURL(tc.base, tc.bucket, tc.key); got != tc.want {
			t.Errorf("objectURL(%q, %q, %q) = %q, want %q", tc.base, tc.bucket, tc.key, got, tc.want)
		}
	}
}
