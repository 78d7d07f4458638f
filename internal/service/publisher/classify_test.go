package publisher

import "testing"

func TestClassifyMessage(t *testing.T) {
	cases := []struct {
		msg  string
		want ErrorCode
	}{
		{"Error validating access token: Session has expired", CodeTokenExpired},
		{"token EXPIRED yesterday", CodeTokenExpired},
		{"Invalid OAuth access token", CodeTokenInvalid},
		{"server returned 401", CodeTokenInvalid},
		{"(#190) This method must be called with a valid access token", CodeTokenInvalid},
		{`{"error":{"code": 190, "error_subcode": 458}}`, CodeTokenInvalid},
		{"request failed with code 200 in graph response", CodeTokenInvalid},
		{"subreddit does not allow self posts", CodeUnknown},
		{"invalid input on field title", CodeUnknown},
		{"", CodeUnknown},
	}

	for _, c := range cases {
		if got := ClassifyMessage(c.msg); got != c.want {
			t.Errorf("ClassifyMessage(%q) = %s, want %s", c.msg, got, c.want)
		}
	}
}

func TestIsTokenError(t *testing.T) {
	for _, code := range []ErrorCode{CodeTokenExpired, CodeTokenInvalid, CodeUnauthorized} {
		if !code.IsTokenError() {
			t.Errorf("%s should be a token error", code)
		}
	}
	for _, code := range []ErrorCode{CodeRateLimited, CodeRejected, CodeUnavailable, CodeUnknown} {
		if code.IsTokenError() {
			t.Errorf("%s should not be a token error", code)
		}
	}
}

func TestAsErrorPassesThroughStructuredErrors(t *testing.T) {
	orig := NewError(CodeRateLimited, "slow down")
	if got := AsError(orig); got != orig {
		t.Fatal("expected structured error to pass through unchanged")
	}
}
