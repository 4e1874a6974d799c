package di

import (
	"context"
	"fmt"
	"testing"

	"github.com/goliatone/go-country-cache/country"
	"github.com/goliatone/go-country-cache/interactor"
)

func benchCatalog(n int) []country.Country {
	catalog := make([]country.Country, n)
	for i := range catalog {
		catalog[i] = country.Country{
			Name:       fmt.Sprintf("Country %04d", i),
			Capital:    fmt.Sprintf("Capital %04d", i),
			Region:     []string{"Africa", "Americas", "Asia", "Europe", "Oceania"}[i%5],
			Population: int64(i) * 1000,
			FlagURL:    fmt.Sprintf("https://flagcdn.com/c%04d.svg", i),
		}
	}
	return catalog
}

func newBenchContainer(b *testing.B, n int) *Container {
	b.Helper()

	catalog := benchCatalog(n)
	container, _ := newTestContainer(b, nil, WithSource(staticSource{countries: catalog}))
	if _, err := container.Store().ReconcileAndStore(context.Background(), catalog); err != nil {
		b.Fatalf("seed failed: %v", err)
	}
	return container
}

// BenchmarkCachedVsBaseStore compares reads through the cache with reads
// straight from the database.
func BenchmarkCachedVsBaseStore(b *testing.B) {
	container := newBenchContainer(b, 250)
	ctx := context.Background()
	base := container.Storage()
	cached := container.Store()

	b.Run("base_Get", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = base.Get(ctx, fmt.Sprintf("Country %04d", i%250))
		}
	})

	b.Run("cached_Get", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = cached.Get(ctx, fmt.Sprintf("Country %04d", i%250))
		}
	})

	b.Run("base_List", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = base.List(ctx)
		}
	})

	b.Run("cached_List", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = cached.List(ctx)
		}
	})

	b.Run("base_Search", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = base.Search(ctx, "y 01*")
		}
	})

	b.Run("cached_Search", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = cached.Search(ctx, "y 01*")
		}
	})
}

func BenchmarkReconcileAndStore(b *testing.B) {
	for _, n := range []int{50, 250, 1000} {
		b.Run(fmt.Sprintf("records_%d", n), func(b *testing.B) {
			container := newBenchContainer(b, n)
			catalog := benchCatalog(n)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := container.Store().ReconcileAndStore(ctx, catalog); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkKeySerialization(b *testing.B) {
	container := newBenchContainer(b, 1)
	serializer := container.KeySerializer()

	testCases := []struct {
		name string
		args []any
	}{
		{name: "no_args", args: nil},
		{name: "name", args: []any{"Slovakia"}},
		{name: "long_pattern", args: []any{fmt.Sprintf("%0100d", 7)}},
	}

	for _, tc := range testCases {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = serializer.SerializeKey("Search", tc.args...)
			}
		})
	}
}

func BenchmarkConcurrentCacheAccess(b *testing.B) {
	container := newBenchContainer(b, 250)
	it := container.Interactor()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			var action interactor.Action = interactor.LoadCountries{}
			if i%4 == 0 {
				action = interactor.LoadCountry{Name: fmt.Sprintf("Country %04d", i%250)}
			}
			_ = it.Run(context.Background(), action)
			i++
		}
	})
}
