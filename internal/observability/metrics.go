package observability

import "expvar"

var (
	RequestsTotal = expvar.NewInt("requests_total")
	Responses2xx  = expvar.NewInt("responses_2xx")
	Responses4xx  = expvar.NewInt("responses_4xx")
	Responses5xx  = expvar.NewInt("responses_5xx")
	RateLimited   = expvar.NewInt("responses_rate_limited")

	QueriesTotal      = expvar.NewInt("queries_total")
	QueriesNotFound   = expvar.NewInt("queries_not_found")
	RedirectsFollowed = expvar.NewInt("redirects_followed")
	RedirectsTooDeep  = expvar.NewInt("redirect_depth_exceeded")
	StoreErrors       = expvar.NewInt("store_errors")

	DictsIndexed = expvar.NewInt("dicts_indexed")
	DictsFailed  = expvar.NewInt("dicts_failed")
)

func recordStatus(code int) {
	RequestsTotal.Add(1)
	switch {
	case code >= 200 && code < 300:
		Responses2xx.Add(1)
	case code >= 400 && code < 500:
		Responses4xx.Add(1)
	case code >= 500:
		Responses5xx.Add(1)
	}
}
