// Package interactor turns user actions into result streams.
//
// Every call to Interactor.Process yields an InProgress result followed by
// exactly one Success or Failure, then the channel closes:
//
//	for r := range it.Process(ctx, interactor.LoadCountries{Refreshing: true}) {
//		state = interactor.Reduce(state, r)
//	}
//
// Canceling ctx abandons the action. No terminal result is sent and the
// channel is closed; storage and HTTP calls observe the same ctx.
//
// Remote loads go through a cache.CacheService keyed per catalog or per
// search query, so concurrent identical loads share a single fetch and the
// following reconcile. A refreshing load drops the catalog entry first.
//
// Errors from the store or the remote source never escape Process; they
// arrive as the Err of a Failure result with the request id attached.
package interactor
