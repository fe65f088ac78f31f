package pubmed

const efetchXML = `<?xml version="1.0" ?>
<!DOCTYPE PubmedArticleSet PUBLIC "-//NLM//DTD PubMedArticle, 1st January 2024//EN" "https://dtd.nlm.nih.gov/ncbi/pubmed/out/pubmed_240101.dtd">
<PubmedArticleSet>
<PubmedArticle>
  <MedlineCitation Status="MEDLINE" Owner="NLM">
    <PMID Version="1">111</PMID>
    <Article PubModel="Print">
      <ArticleTitle>Binding of <i>insulin</i> to its receptor.</ArticleTitle>
      <Abstract>
        <AbstractText Label="BACKGROUND" NlmCategory="BACKGROUND">Insulin binds tightly.</AbstractText>
        <AbstractText Label="RESULTS" NlmCategory="RESULTS">The measured ΔG was -9.1 kcal/mol at 25<sup>o</sup>C.</AbstractText>
      </Abstract>
    </Article>
    <CommentsCorrectionsList>
      <CommentsCorrections RefType="Cites"><PMID Version="1">999</PMID></CommentsCorrections>
    </CommentsCorrectionsList>
  </MedlineCitation>
  <PubmedData>
    <History>
      <PubMedPubDate PubStatus="pubmed"><Year>2025</Year><Month>3</Month><Day>2</Day></PubMedPubDate>
      <PubMedPubDate PubStatus="entrez"><Year>2025</Year><Month>3</Month><Day>1</Day></PubMedPubDate>
    </History>
  </PubmedData>
</PubmedArticle>
<PubmedArticle>
  <MedlineCitation Status="MEDLINE" Owner="NLM">
    <PMID Version="1">222</PMID>
    <Article PubModel="Print">
      <ArticleTitle>A letter without an abstract.</ArticleTitle>
    </Article>
  </MedlineCitation>
  <PubmedData>
    <History>
      <PubMedPubDate PubStatus="pubmed"><Year>2024</Year><Month>Dec</Month></PubMedPubDate>
    </History>
  </PubmedData>
</PubmedArticle>
</PubmedArticleSet>`
