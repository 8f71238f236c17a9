// Package ytshorts builds feeds of a YouTube channel's Shorts, with the links
// of every video description restored.
//
// Overview
//
// YouTube ships a description as plain text plus a list of link annotations
// whose offsets drift from the text. The description package corrects the
// offsets and wraps every annotation in an anchor, or leaves the text alone
// when any annotation cannot be placed:
//
//	res := description.Reconstruct(text, anns, description.WithBaseURL("https://www.youtube.com"))
//	if res.IsLinked() {
//		fmt.Println(res.Text)
//	}
//
// The feed package lists a channel's Shorts tab, reads the watch page of each
// Short on a bounded worker pool and encodes the result as Atom or JSON Feed:
//
//	src, _ := youtube.ParseSource("", "", "@veritasium")
//	f, err := builder.Build(ctx, src, 20)
//	if err != nil {
//		log.Fatal(err)
//	}
//	feed.WriteAtom(os.Stdout, f)
//
// Configuration
//
// Settings are read from defaults, then ytshorts.yaml (./ or
// ~/.config/ytshorts/), then YTSHORTS_* environment variables, for example:
//
//   - YTSHORTS_ITEM_LIMIT: Default number of feed items (1-99)
//   - YTSHORTS_WORKERS: Concurrent watch page fetches
//   - YTSHORTS_CACHE_BACKEND: memory, redis or file
//   - YTSHORTS_RATE_LIMIT_COOLDOWN: Pause after YouTube answers 429
//   - YTSHORTS_API_KEY: Optional YouTube Data API key for channel details
//
// Error Handling
//
//	if errors.Is(err, ytshorts.ErrRateLimited) {
//		// try again after the cooldown
//	}
//
//	var se *ytshorts.StructuralError
//	if errors.As(err, &se) {
//		fmt.Printf("%s is missing %s\n", se.URL, se.Field)
//	}
//
// Sub-packages
//
//   - description: Offset correction and link splicing
//   - youtube: Page fetching and ytInitialData parsing
//   - feed: Feed assembly and encoding
//   - cache: Page cache and rate-limit gate (memory, redis, file)
//   - http: Page client with retry, rate limiting and circuit breaker
//   - server: HTTP feed endpoint
package ytshorts
