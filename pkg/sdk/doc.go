// Package lexrag embeds the lexrag knowledge base in a Go program.
//
// A Client loads documents from a file, Redis key, Badger directory or a
// custom Loader, ranks them lexically against a question and returns a
// short answer with cited sources. No network service is involved.
//
//	client, _ := lexrag.New(ctx, lexrag.WithFile("kb/**/*.json"))
//	defer client.Close()
//
//	ans, _ := client.Query(ctx, "how do I reset my password", 3)
//	fmt.Println(ans.Text)
//
// Application structs can serve as documents through struct tags:
//
//	type Article struct {
//	    Slug string   `lexrag:"id"`
//	    Name string   `lexrag:"title"`
//	    Body string   `lexrag:"content"`
//	    Tags []string `lexrag:"tags"`
//	}
//
//	client, _ := lexrag.New(ctx, lexrag.WithLoader(lexrag.StructLoader(articles)))
package lexrag
