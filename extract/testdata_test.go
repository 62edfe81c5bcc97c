package extract

const resultsPage = `<!DOCTYPE html>
<html>
<head><title>Quini 6 - Sorteo 3330 - Tradicional, Revancha y Siempre Sale</title></head>
<body>
<div class="menu"><a href="/">Inicio</a> <a href="/quini6/">Quini 6</a></div>
<h2>Sorteo Nro. 3330 del dia domingo 14-12-2025</h2>
<h3>TRADICIONAL PRIMER SORTEO</h3>
<p class="numeros">00 - 25 - 26 - 28 - 34 - 41</p>
<h3>TRADICIONAL LA SEGUNDA DEL QUINI</h3>
<p class="numeros">03 - 11 - 17 - 29 - 38 - 45</p>
<h3>REVANCHA</h3>
<p class="numeros">02 - 09 - 13 - 21 - 30 - 44</p>
<h3>SIEMPRE SALE</h3>
<p class="numeros">06 - 12 - 19 - 27 - 33 - 40</p>
<script>var sorteo = "01 - 02 - 03";</script>
</body>
</html>`
