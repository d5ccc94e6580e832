package features

import "math"

// Similarity scores each candidate text against a job description.
// The result is order-preserving and every score lies in [0, 1].
type Similarity interface {
	Scores(cvTexts []string, jd string) []float64
}

// TFIDF computes cosine similarity between smoothed, l2-normalized TF-IDF
// vectors fitted on the job description plus all candidate texts.
type TFIDF struct{}

func (TFIDF) Scores(cvTexts []string, jd string) []float64 {
	docs := make([][]string, 0, len(cvTexts)+1)
	docs = append(docs, Tokenize(jd))
	for _, text := range cvTexts {
		docs = append(docs, Tokenize(text))
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}

	jdVec := vectorize(docs[0], idf)
	scores := make([]float64, len(cvTexts))
	for i := range cvTexts {
		scores[i] = cosine(jdVec, vectorize(docs[i+1], idf))
	}

	return scores
}

func vectorize(doc []string, idf map[string]float64) map[string]float64 {
	vec := make(map[string]float64, len(doc))
	for _, term := range doc {
		vec[term]++
	}

	var norm float64
	for term, tf := range vec {
		w := tf * idf[term]
		vec[term] = w
		norm += w * w
	}

	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}

func cosine(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}

	var dot float64
	for term, w := range a {
		dot += w * b[term]
	}

	// rounding can push identical documents marginally past 1
	return math.Max(0, math.Min(1, dot))
}
