package goquery_test

// alertHTML is a trimmed Google Scholar alert with three results: an HTML
// article, a book and a result without a snippet.
const alertHTML = `<!DOCTYPE html>
<html>
<body>
<div style="font-family:arial,sans-serif;font-size:13px;line-height:16px;max-width:600px">
<div style="font-size:11px"><a href="https://scholar.google.com/scholar_alerts?view_op=list_alerts&amp;hl=nl">[ Scholar ]</a></div>
<h3 style="font-weight:normal;margin:0;font-size:17px;line-height:20px;">
<span style="font-size:11px;font-weight:bold;color:#1a0dab;vertical-align:2px">[HTML]</span>
<a href="https://scholar.google.com/scholar_url?url=https://www.nature.com/articles/s41598-025-88482-7&amp;hl=nl&amp;sa=X" class="gse_alrt_title" style="font-size:17px;color:#1a0dab;line-height:22px">X-ray   seed study</a>
</h3>
<div style="color:#006621;line-height:18px">M Griffiths, B Gautam, C Lebow, K Duncan, X Ding&hellip;&nbsp;- Scientific Reports, 2025</div>
<div class="gse_alrt_sni" style="line-height:17px">Phenotyping methods for seed morphology are mostly limited to two-dimensional<br>imaging</div>
<table cellpadding="0" cellspacing="0" border="0" style="padding:8px 0 12px 0"><tr><td><a href="https://scholar.google.com/citations?hl=nl">Share</a></td></tr></table>
<h3 style="font-weight:normal;margin:0;font-size:17px;line-height:20px;">
<span style="font-size:11px;font-weight:bold;color:#1a0dab;vertical-align:2px">[BOOK]</span>
<a href="https://scholar.google.com/scholar_url?url=https://books.google.com/books%3Fid%3Dabc" class="gse_alrt_title">Seed biology handbook</a>
</h3>
<div style="color:#006621;line-height:18px">J Bewley&nbsp;- 2024</div>
<div class="gse_alrt_sni">A comprehensive treatment of seed development</div>
<h3 style="font-weight:normal;margin:0;font-size:17px;line-height:20px;">
<a href="https://scholar.google.com/scholar_url?url=https://arxiv.org/abs/2501.01234" class="gse_alrt_title">Root imaging at scale</a>
</h3>
<div style="color:#006621;line-height:18px">A Author</div>
</div>
</body>
</html>`
