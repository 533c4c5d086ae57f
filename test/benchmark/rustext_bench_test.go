// Package benchmark contains Go benchmarks for the text pipeline, matching
// primitives, and the search engine, measuring throughput and allocation
// behaviour.
package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vkusplato/menu-search/internal/search/morphology"
	"github.com/vkusplato/menu-search/internal/search/rustext"
)

var sampleTexts = map[string]string{
	"short":  "Пицца Маргарита",
	"latin":  "Kaпучинo c кoрицeй и мoлoкoм",
	"medium": "Бизнес-ланч: куриный суп, салат Цезарь с курицей, картофель фри и морс 0.3л",
	"long": strings.Repeat("Шаурма классическая с куриным филе, свежими овощами, "+
		"фирменным соусом и картофелем фри в тонком лаваше. ", 20),
}

func BenchmarkNormalize(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				normalized := rustext.Normalize(text)
				_ = normalized
			}
		})
	}
}

func BenchmarkNormalizeAndTokenize(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := rustext.NormalizeAndTokenize(text)
				_ = tokens
			}
		})
	}
}

func BenchmarkNormalizeParallel(b *testing.B) {
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tokens := rustext.NormalizeAndTokenize(text)
			_ = tokens
		}
	})
}

func BenchmarkStem(b *testing.B) {
	words := []string{
		"куриный", "грибы", "овощи", "классическая",
		"фирменный", "маргарита", "картофель", "шаурма",
		"соусом", "лаваше",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, w := range words {
			stem := morphology.Stem(w)
			_ = stem
		}
	}
}

func BenchmarkStemVariants(b *testing.B) {
	words := []string{"куриный", "грибы", "овощи", "классическая", "суп"}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, w := range words {
			variants := morphology.StemVariants(w)
			_ = variants
		}
	}
}

func BenchmarkNormalizeVaryingSize(b *testing.B) {
	sizes := []int{10, 100, 500, 1000, 5000}
	baseWord := "пицца маргарита шаурма классическая куриный суп "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				normalized := rustext.Normalize(text)
				_ = normalized
			}
		})
	}
}
